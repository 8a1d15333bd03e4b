package rcv

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/bbengfort/rcv/pb"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// NewServer creates a tabulation server for a single election. If the
// configuration names a ballots file, the election and its ballots are
// loaded from it, otherwise the election is created from the configured
// candidates with no ballots cast.
func NewServer(options *Config) (s *Server, err error) {
	// Create a new configuration from defaults, configuration file, and the
	// environment; verify it returning any errors.
	config := new(Config)
	if err = config.Load(); err != nil {
		return nil, err
	}

	// Update the configuration with the passed in options
	if err = config.Update(options); err != nil {
		return nil, err
	}

	s = &Server{config: config, metrics: NewMetrics()}
	if s.name, err = config.GetName(); err != nil {
		return nil, err
	}

	if config.Ballots != "" {
		var format Format
		if config.Format != "" {
			if format, err = ParseFormat(config.Format); err != nil {
				return nil, err
			}
		}

		if s.election, err = LoadElection(config.Ballots, format); err != nil {
			return nil, err
		}
	} else {
		if s.election, err = New(config.Candidates...); err != nil {
			return nil, err
		}
	}

	s.election.Observe(LogEvents, s.metrics.Observe)
	s.actor = NewActor(s.Handle)
	s.srv = grpc.NewServer()
	pb.RegisterTabulatorServer(s.srv, s)
	return s, nil
}

// Server hosts an election behind the Tabulator gRPC service. Elections are
// not thread-safe, so every request is dispatched as an event to an actor
// that applies them to the election one at a time.
type Server struct {
	name     string       // name of the election
	config   *Config      // configuration values
	election *Election    // the election ballots are cast in
	metrics  *Metrics     // tabulation metrics, observed from the election
	actor    Actor        // serializes requests onto the election
	srv      *grpc.Server // the gRPC server handling requests
}

// Listen on the configured bind address and run the event loop.
func (s *Server) Listen() error {
	sock, err := net.Listen("tcp", s.config.Bind)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", s.config.Bind, err)
	}
	return s.Serve(sock)
}

// Serve gRPC requests on the listener and handle them in the event loop
// until the server is closed.
func (s *Server) Serve(sock net.Listener) error {
	log.Info().
		Str("election", s.name).
		Str("addr", sock.Addr().String()).
		Strs("candidates", s.election.Candidates()).
		Int("ballots", s.election.Len()).
		Msg("listening for requests")

	// Run the gRPC server in its own thread
	go s.srv.Serve(sock)

	// Run the event handling loop
	return s.actor.Listen()
}

// Close stops the gRPC server once pending requests have completed, then
// stops the event loop.
func (s *Server) Close() error {
	s.srv.GracefulStop()
	return s.actor.Close()
}

// Election returns the election hosted by the server.
//
// NOTE: the election must not be accessed while the server is listening.
func (s *Server) Election() *Election {
	return s.election
}

// Metrics returns the tabulation metrics collected by the server.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

//===========================================================================
// RPC Handlers
//===========================================================================

// reply carries a handled request back to the waiting RPC.
type reply struct {
	out *structpb.Struct
	err error
}

// Vote casts the ballot in the request.
func (s *Server) Vote(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.dispatch(ctx, VoteRequestEvent, in)
}

// Tally the ballots cast so far.
func (s *Server) Tally(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.dispatch(ctx, TallyRequestEvent, in)
}

// Status returns the candidates and the number of ballots cast.
func (s *Server) Status(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.dispatch(ctx, StatusRequestEvent, in)
}

// dispatch the request to the event loop and wait for it to be handled.
func (s *Server) dispatch(ctx context.Context, etype EventType, in *structpb.Struct) (*structpb.Struct, error) {
	// Create a channel to wait for event handler on.
	source := make(chan *reply, 1)

	// Dispatch the event received and wait for it to be handled
	event := &event{
		etype:  etype,
		source: source,
		value:  in,
	}
	if err := s.actor.Dispatch(event); err != nil {
		return nil, status.Error(codes.Unavailable, err.Error())
	}

	select {
	case rep := <-source:
		return rep.out, rep.err
	case <-ctx.Done():
		return nil, status.FromContextError(ctx.Err()).Err()
	}
}

// Handle the events in serial order.
func (s *Server) Handle(e Event) error {
	log.Trace().Str("event", e.Type().String()).Msg("event received")

	switch e.Type() {
	case VoteRequestEvent:
		return s.onVoteRequest(e)
	case TallyRequestEvent:
		return s.onTallyRequest(e)
	case StatusRequestEvent:
		return s.onStatusRequest(e)
	default:
		return fmt.Errorf("no handler identified for event %s", e.Type())
	}
}

func (s *Server) onVoteRequest(e Event) error {
	source, in, err := unpackRequest(e)
	if err != nil {
		return err
	}

	ballot, err := ParseBallot(in.AsMap()["ballot"])
	if err != nil {
		source <- &reply{err: statusError(err)}
		return nil
	}

	if err = s.election.Vote(ballot); err != nil {
		log.Debug().Err(err).Msg("ballot rejected")
		source <- &reply{err: statusError(err)}
		return nil
	}

	source <- makeReply(map[string]interface{}{"ballots": s.election.Len()})
	return nil
}

func (s *Server) onTallyRequest(e Event) error {
	source, _, err := unpackRequest(e)
	if err != nil {
		return err
	}

	result, err := s.election.Tally()
	if err != nil {
		source <- &reply{err: statusError(err)}
		return nil
	}

	if s.config.Metrics != "" {
		extra := map[string]interface{}{"election": s.name}
		if err := s.metrics.Dump(s.config.Metrics, extra); err != nil {
			log.Warn().Err(err).Str("path", s.config.Metrics).Msg("could not dump metrics")
		}
	}

	source <- makeReply(result.Serialize())
	return nil
}

func (s *Server) onStatusRequest(e Event) error {
	source, _, err := unpackRequest(e)
	if err != nil {
		return err
	}

	candidates := make([]interface{}, 0, s.election.Slate().Len())
	for _, name := range s.election.Candidates() {
		candidates = append(candidates, name)
	}

	source <- makeReply(map[string]interface{}{
		"name":       s.name,
		"version":    PackageVersion,
		"candidates": candidates,
		"ballots":    s.election.Len(),
	})
	return nil
}

// unpackRequest extracts the reply channel and request from an RPC event.
func unpackRequest(e Event) (chan *reply, *structpb.Struct, error) {
	source, ok := e.Source().(chan *reply)
	if !ok {
		return nil, nil, ErrEventSourceError
	}

	in, ok := e.Value().(*structpb.Struct)
	if !ok {
		return nil, nil, ErrEventTypeError
	}
	return source, in, nil
}

// makeReply converts the data into a protobuf struct reply.
func makeReply(data map[string]interface{}) *reply {
	out, err := structpb.NewStruct(data)
	if err != nil {
		return &reply{err: status.Error(codes.Internal, err.Error())}
	}
	return &reply{out: out}
}

// statusError maps election errors onto gRPC status codes.
func statusError(err error) error {
	switch {
	case errors.Is(err, ErrDuplicateRank),
		errors.Is(err, ErrOversizeBallot),
		errors.Is(err, ErrGapInRanks),
		errors.Is(err, ErrUnknownCandidate),
		errors.Is(err, ErrUnknownBallotType):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrNoMajority):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
