package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bbengfort/rcv"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	// Load the .env file if it exists
	godotenv.Load()

	app := cli.NewApp()
	app.Name = "rcv"
	app.Usage = "ranked-choice (instant-runoff) election tabulation"
	app.Version = rcv.PackageVersion
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"L"},
			Usage:   "verbosity of logging (trace, debug, info, warn, error)",
		},
		&cli.BoolFlag{
			Name:  "console",
			Usage: "write human readable logs instead of JSON",
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:      "tally",
			Usage:     "tally the ballots in an election file",
			ArgsUsage: "path",
			Action:    tally,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Usage:   "election file format (json, yaml, toml, csv), inferred from the extension by default",
				},
				&cli.BoolFlag{
					Name:    "json",
					Aliases: []string{"j"},
					Usage:   "print the result with every round as JSON",
				},
				&cli.StringFlag{
					Name:    "metrics",
					Aliases: []string{"m"},
					Usage:   "append tabulation metrics to the file at this path",
				},
			},
		},
		{
			Name:   "serve",
			Usage:  "run a tabulation server for a single election",
			Action: serve,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "name",
					Aliases: []string{"n"},
					Usage:   "name of the election",
				},
				&cli.StringFlag{
					Name:    "candidates",
					Aliases: []string{"c"},
					Usage:   "comma separated slate of candidates",
				},
				&cli.StringFlag{
					Name:    "ballots",
					Aliases: []string{"b"},
					Usage:   "election file to load candidates and ballots from",
				},
				&cli.StringFlag{
					Name:    "bind",
					Aliases: []string{"a"},
					Usage:   "address to listen for requests on",
				},
				&cli.StringFlag{
					Name:    "metrics",
					Aliases: []string{"m"},
					Usage:   "append tabulation metrics to the file at this path after every tally",
				},
				&cli.DurationFlag{
					Name:    "uptime",
					Aliases: []string{"u"},
					Usage:   "shut the server down after the specified duration",
				},
			},
		},
		{
			Name:      "vote",
			Usage:     "cast a ballot with a tabulation server",
			ArgsUsage: "candidate [candidate ...]",
			Action:    vote,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "addr",
					Aliases: []string{"a"},
					Usage:   "address of the tabulation server",
				},
				&cli.BoolFlag{
					Name:    "indices",
					Aliases: []string{"i"},
					Usage:   "candidates are given by their position on the slate",
				},
			},
		},
		{
			Name:   "results",
			Usage:  "request a tally from a tabulation server",
			Action: results,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "addr",
					Aliases: []string{"a"},
					Usage:   "address of the tabulation server",
				},
				&cli.BoolFlag{
					Name:    "json",
					Aliases: []string{"j"},
					Usage:   "print the result with every round as JSON",
				},
			},
		},
		{
			Name:   "bench",
			Usage:  "benchmark tallies of randomly generated elections",
			Action: bench,
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:    "candidates",
					Aliases: []string{"c"},
					Usage:   "number of candidates per election",
					Value:   8,
				},
				&cli.UintFlag{
					Name:    "ballots",
					Aliases: []string{"n"},
					Usage:   "number of ballots per election",
					Value:   10000,
				},
				&cli.UintFlag{
					Name:    "trials",
					Aliases: []string{"t"},
					Usage:   "number of elections to tally",
					Value:   100,
				},
				&cli.Int64Flag{
					Name:    "seed",
					Aliases: []string{"s"},
					Usage:   "random seed for ballot generation",
				},
				&cli.BoolFlag{
					Name:    "json",
					Aliases: []string{"j"},
					Usage:   "print the results as JSON instead of CSV",
				},
			},
		},
		{
			Name:   "config",
			Usage:  "print the resolved configuration",
			Action: config,
		},
	}

	app.Run(os.Args)
}

//===========================================================================
// Commands
//===========================================================================

func tally(c *cli.Context) (err error) {
	conf, err := configure(c, &rcv.Config{Metrics: c.String("metrics"), Format: c.String("format")})
	if err != nil {
		return err
	}

	path := conf.Ballots
	if c.NArg() > 0 {
		path = c.Args().First()
	}

	if path == "" {
		return cli.Exit("specify an election file to tally", 1)
	}

	var format rcv.Format
	if conf.Format != "" {
		if format, err = rcv.ParseFormat(conf.Format); err != nil {
			return cli.Exit(err, 1)
		}
	}

	var election *rcv.Election
	if election, err = rcv.LoadElection(path, format); err != nil {
		return cli.Exit(err, 1)
	}

	metrics := rcv.NewMetrics()
	election.Observe(rcv.LogEvents, metrics.Observe)

	var result *rcv.Result
	if result, err = election.Tally(); err != nil {
		return cli.Exit(err, 1)
	}

	if conf.Metrics != "" {
		name, _ := conf.GetName()
		if err = metrics.Dump(conf.Metrics, map[string]interface{}{"election": name, "path": path}); err != nil {
			return cli.Exit(err, 1)
		}
	}

	return printResult(c, result, election.Candidates())
}

func serve(c *cli.Context) (err error) {
	opts := &rcv.Config{
		Name:    c.String("name"),
		Ballots: c.String("ballots"),
		Bind:    c.String("bind"),
		Metrics: c.String("metrics"),
	}

	if candidates := c.String("candidates"); candidates != "" {
		opts.Candidates = strings.Split(candidates, ",")
	}

	if uptime := c.Duration("uptime"); uptime > 0 {
		opts.Uptime = uptime.String()
	}

	var conf *rcv.Config
	if conf, err = configure(c, opts); err != nil {
		return err
	}

	var server *rcv.Server
	if server, err = rcv.NewServer(conf); err != nil {
		return cli.Exit(err, 1)
	}

	// Shutdown the server gracefully on interrupt or once the uptime elapses
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

		var timeout <-chan time.Time
		if conf.Uptime != "" {
			uptime, _ := conf.GetUptime()
			timeout = time.After(uptime)
		}

		select {
		case <-quit:
		case <-timeout:
			log.Info().Str("uptime", conf.Uptime).Msg("uptime elapsed")
		}

		log.Info().Str("metrics", server.Metrics().String()).Msg("shutting down")
		server.Close()
	}()

	if err = server.Listen(); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

func vote(c *cli.Context) (err error) {
	if c.NArg() == 0 {
		return cli.Exit("specify at least one candidate to rank", 1)
	}

	var client *rcv.Client
	if client, err = connect(c); err != nil {
		return err
	}
	defer client.Close()

	var ballot rcv.Ballot
	if c.Bool("indices") {
		ids := make(rcv.Indices, 0, c.NArg())
		for _, arg := range c.Args().Slice() {
			var id int
			if id, err = strconv.Atoi(arg); err != nil {
				return cli.Exit(fmt.Errorf("could not parse candidate index %q", arg), 1)
			}
			ids = append(ids, id)
		}
		ballot = ids
	} else {
		ballot = rcv.Names(c.Args().Slice())
	}

	var n int
	if n, err = client.Vote(ballot); err != nil {
		return cli.Exit(err, 1)
	}

	fmt.Printf("ballot cast, %d ballots in election\n", n)
	return nil
}

func results(c *cli.Context) (err error) {
	var client *rcv.Client
	if client, err = connect(c); err != nil {
		return err
	}
	defer client.Close()

	var status *rcv.Status
	if status, err = client.Status(); err != nil {
		return cli.Exit(err, 1)
	}

	var result *rcv.Result
	if result, err = client.Tally(); err != nil {
		return cli.Exit(err, 1)
	}

	return printResult(c, result, status.Candidates)
}

func bench(c *cli.Context) (err error) {
	var conf *rcv.Config
	if conf, err = configure(c, &rcv.Config{Seed: c.Int64("seed")}); err != nil {
		return err
	}

	var b *rcv.Benchmark
	if b, err = rcv.NewBenchmark(c.Uint("candidates"), c.Uint("ballots"), c.Uint("trials"), conf.Seed); err != nil {
		return cli.Exit(err, 1)
	}

	if c.Bool("json") {
		var data []byte
		if data, err = b.JSON(2); err != nil {
			return cli.Exit(err, 1)
		}
		fmt.Println(string(data))
		return nil
	}

	var row string
	if row, err = b.CSV(true); err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Println(row)
	return nil
}

func config(c *cli.Context) (err error) {
	var conf *rcv.Config
	if conf, err = configure(c, nil); err != nil {
		return err
	}

	path, err := conf.GetPath()
	if err != nil {
		path = "none"
	}

	var data []byte
	if data, err = json.MarshalIndent(conf, "", "  "); err != nil {
		return cli.Exit(err, 1)
	}

	fmt.Printf("# configuration file: %s\n%s\n", path, string(data))
	return nil
}

//===========================================================================
// Helpers
//===========================================================================

// configure loads the configuration, applies the command options and the
// global logging flags, then sets up the logger.
func configure(c *cli.Context, opts *rcv.Config) (*rcv.Config, error) {
	if opts == nil {
		opts = new(rcv.Config)
	}

	if level := c.String("log-level"); level != "" {
		opts.LogLevel = level
	}

	if c.Bool("console") {
		opts.Console = true
	}

	conf := new(rcv.Config)
	if err := conf.Load(); err != nil {
		return nil, cli.Exit(err, 1)
	}

	if err := conf.Update(opts); err != nil {
		return nil, cli.Exit(err, 1)
	}

	rcv.SetLogger(conf)
	return conf, nil
}

// connect creates a client to the tabulation server at the addr flag or the
// configured bind address.
func connect(c *cli.Context) (*rcv.Client, error) {
	conf, err := configure(c, &rcv.Config{Bind: c.String("addr")})
	if err != nil {
		return nil, err
	}

	client, err := rcv.NewClient(conf)
	if err != nil {
		return nil, cli.Exit(err, 1)
	}
	return client, nil
}

func printResult(c *cli.Context, result *rcv.Result, candidates []string) error {
	if c.Bool("json") {
		data, err := json.MarshalIndent(result.Serialize(), "", "  ")
		if err != nil {
			return cli.Exit(err, 1)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(result.Table(candidates))
	return nil
}
