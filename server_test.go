package rcv_test

import (
	"context"
	"net"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	. "github.com/bbengfort/rcv"
)

var _ = Describe("Server", func() {

	var (
		server *Server
		client *Client
		sock   *bufconn.Listener
		done   chan error
	)

	BeforeEach(func() {
		var err error
		server, err = NewServer(&Config{Name: "board", Candidates: []string{"A", "B", "C", "D"}})
		Ω(err).ShouldNot(HaveOccurred())

		sock = bufconn.Listen(1024 * 1024)
		done = make(chan error, 1)
		go func() {
			done <- server.Serve(sock)
		}()

		dialer := grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return sock.Dial()
		})

		client, err = NewClient(&Config{Bind: "bufnet", Timeout: "2s"}, dialer)
		Ω(err).ShouldNot(HaveOccurred())
	})

	AfterEach(func() {
		Ω(client.Close()).Should(Succeed())
		Ω(server.Close()).Should(Succeed())
		Eventually(done).Should(Receive(BeNil()))
	})

	It("should describe the election", func() {
		info, err := client.Status()
		Ω(err).ShouldNot(HaveOccurred())
		Ω(info.Name).Should(Equal("board"))
		Ω(info.Version).Should(Equal(PackageVersion))
		Ω(info.Candidates).Should(Equal([]string{"A", "B", "C", "D"}))
		Ω(info.Ballots).Should(BeZero())
	})

	It("should cast ballots in every shape and tally them", func() {
		ballots := []Ballot{
			Indices{2, 1, 3},
			Names{"C", "A"},
			Ranks{"A": 1, "B": 2, "C": 3},
			Indices{0, 2, 1},
			Names{"C", "B", "D"},
		}

		for i, ballot := range ballots {
			n, err := client.Vote(ballot)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(n).Should(Equal(i + 1))
		}

		result, err := client.Tally()
		Ω(err).ShouldNot(HaveOccurred())
		Ω(result.Outcome).Should(Equal(Elected))
		Ω(result.Winner).Should(Equal("C"))
		Ω(result.Ballots).Should(Equal(5))
		Ω(result.Rounds).Should(HaveLen(1))
		Ω(result.Rounds[0].Counts).Should(Equal(Counts{"A": 2, "B": 0, "C": 3, "D": 0}))

		Ω(server.Metrics().Ballots()).Should(BeEquivalentTo(5))
		Ω(server.Metrics().Tallies()).Should(BeEquivalentTo(1))
	})

	It("should reject invalid ballots", func() {
		_, err := client.Vote(Names{"A", "A"})
		Ω(status.Code(err)).Should(Equal(codes.InvalidArgument))

		_, err = client.Vote(Names{"A", "Z"})
		Ω(status.Code(err)).Should(Equal(codes.InvalidArgument))

		_, err = client.Vote(Ranks{"A": 1, "B": 3})
		Ω(status.Code(err)).Should(Equal(codes.InvalidArgument))

		info, err := client.Status()
		Ω(err).ShouldNot(HaveOccurred())
		Ω(info.Ballots).Should(BeZero())
	})

	It("should report no winner without ballots", func() {
		result, err := client.Tally()
		Ω(err).ShouldNot(HaveOccurred())
		Ω(result.Outcome).Should(Equal(NoWinner))
		Ω(result.Winner).Should(BeEmpty())
	})

})
