package rcv

import (
	"context"
	"fmt"

	"github.com/bbengfort/rcv/pb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// DefaultRetries specifies the number of times to attempt a request.
const DefaultRetries = 3

// NewClient creates a new client to connect to a tabulation server at the
// configured bind address. Additional dial options, e.g. a context dialer,
// are applied when connecting.
func NewClient(options *Config, opts ...grpc.DialOption) (*Client, error) {
	// Create a new configuration from defaults, configuration file, and the
	// environment; verify it returning any errors.
	config := new(Config)
	if err := config.Load(); err != nil {
		return nil, err
	}

	// Update the configuration with the passed in options
	if err := config.Update(options); err != nil {
		return nil, err
	}

	return &Client{config: config, opts: opts}, nil
}

// Client maintains network information embedded in the configuration to
// connect to a tabulation server, cast ballots, and request tallies.
type Client struct {
	config *Config
	opts   []grpc.DialOption
	conn   *grpc.ClientConn
	client pb.TabulatorClient
}

// Status describes the election hosted by a tabulation server.
type Status struct {
	Name       string
	Version    string
	Candidates []string
	Ballots    int
}

// rpc is a single request made on the Tabulator service.
type rpc func(ctx context.Context, client pb.TabulatorClient) (*structpb.Struct, error)

//===========================================================================
// Request API
//===========================================================================

// Vote casts the ballot, returning the number of ballots cast so far.
func (c *Client) Vote(ballot Ballot) (int, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"ballot": ballot.Value()})
	if err != nil {
		return 0, err
	}

	rep, err := c.send(func(ctx context.Context, client pb.TabulatorClient) (*structpb.Struct, error) {
		return client.Vote(ctx, req)
	}, DefaultRetries)
	if err != nil {
		return 0, err
	}

	ballots, _ := toInt(rep.AsMap()["ballots"])
	return ballots, nil
}

// Tally requests a tally of the ballots cast so far.
func (c *Client) Tally() (*Result, error) {
	rep, err := c.send(func(ctx context.Context, client pb.TabulatorClient) (*structpb.Struct, error) {
		return client.Tally(ctx, &structpb.Struct{})
	}, DefaultRetries)
	if err != nil {
		return nil, err
	}

	return ParseResult(rep.AsMap())
}

// Status requests a description of the election.
func (c *Client) Status() (*Status, error) {
	rep, err := c.send(func(ctx context.Context, client pb.TabulatorClient) (*structpb.Struct, error) {
		return client.Status(ctx, &structpb.Struct{})
	}, DefaultRetries)
	if err != nil {
		return nil, err
	}

	data := rep.AsMap()
	info := &Status{}
	info.Name, _ = data["name"].(string)
	info.Version, _ = data["version"].(string)
	info.Ballots, _ = toInt(data["ballots"])

	candidates, _ := data["candidates"].([]interface{})
	for _, item := range candidates {
		if name, ok := item.(string); ok {
			info.Candidates = append(info.Candidates, name)
		}
	}
	return info, nil
}

// Close the connection to the server.
func (c *Client) Close() error {
	return c.close()
}

// Send the request, reconnecting and retrying while the server is
// unavailable for the maximum number of tries.
func (c *Client) send(call rpc, retries int) (*structpb.Struct, error) {
	// Don't attempt if there are no more retries.
	if retries <= 0 {
		return nil, ErrRetries
	}

	// Connect if not connected
	if !c.isConnected() {
		if err := c.connect(); err != nil {
			return nil, err
		}
	}

	// Create the context
	timeout, err := c.config.GetTimeout()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rep, err := call(ctx, c.client)
	if err != nil {
		if status.Code(err) == codes.Unavailable && retries > 1 {
			if err = c.connect(); err != nil {
				return nil, err
			}
			return c.send(call, retries-1)
		}
		return nil, err
	}

	return rep, nil
}

//===========================================================================
// Connection Handlers
//===========================================================================

// Close the connection to the remote host
func (c *Client) close() error {
	// Ensure a valid state after close
	defer func() {
		c.conn = nil
		c.client = nil
	}()

	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}

// Connect to the configured bind address, closing any open connection.
func (c *Client) connect() (err error) {
	c.close()

	opts := make([]grpc.DialOption, 0, len(c.opts)+1)
	opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	opts = append(opts, c.opts...)

	if c.conn, err = grpc.Dial(c.config.Bind, opts...); err != nil {
		return fmt.Errorf("could not connect to '%s': %s", c.config.Bind, err.Error())
	}

	// Create the gRPC client
	c.client = pb.NewTabulatorClient(c.conn)
	return nil
}

// Returns true if a client and a connection exist
func (c *Client) isConnected() bool {
	return c.client != nil && c.conn != nil
}
