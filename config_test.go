package rcv_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	. "github.com/bbengfort/rcv"
)

var _ = Describe("Config", func() {

	It("should validate a correct configuration", func() {
		conf := &Config{
			Name:       "board",
			Candidates: []string{"A", "B", "C"},
			Format:     "yml",
			LogLevel:   "debug",
			Bind:       "localhost:7373",
			Timeout:    "300ms",
			Seed:       42,
			Metrics:    "metrics.json",
			Uptime:     "15m",
		}
		Ω(conf.Validate()).Should(Succeed())
	})

	It("should be valid with loaded defaults", func() {
		conf := new(Config)

		confPath, err := conf.GetPath()
		Ω(confPath).Should(BeZero())
		Ω(err).Should(HaveOccurred())

		Ω(conf.Load()).Should(Succeed())

		// Validate configuration defaults
		Ω(conf.Bind).Should(Equal(":7373"))
		Ω(conf.Timeout).Should(Equal("5s"))
		Ω(conf.LogLevel).Should(Equal("info"))
		Ω(conf.GetLogLevel()).Should(Equal(zerolog.InfoLevel))

		// Validate non configurations
		Ω(conf.Name).Should(BeZero())
		Ω(conf.Candidates).Should(BeZero())
		Ω(conf.Ballots).Should(BeZero())
		Ω(conf.Format).Should(BeZero())
		Ω(conf.Console).Should(BeFalse())
		Ω(conf.Seed).Should(BeZero())
		Ω(conf.Uptime).Should(BeZero())
		Ω(conf.Metrics).Should(BeZero())
	})

	It("should not validate incorrect values", func() {
		invalid := []*Config{
			{Timeout: "soon"},
			{Uptime: "10 minutes"},
			{LogLevel: "loud"},
			{Format: "xml"},
			{Ballots: "testdata/does-not-exist.json"},
		}

		for _, conf := range invalid {
			Ω(conf.Validate()).ShouldNot(Succeed())
		}
	})

	It("should update the configuration with non-zero values", func() {
		conf := new(Config)
		Ω(conf.Load()).Should(Succeed())

		err := conf.Update(&Config{Name: "board", Candidates: []string{"A", "B"}, Timeout: "1s"})
		Ω(err).ShouldNot(HaveOccurred())

		Ω(conf.Name).Should(Equal("board"))
		Ω(conf.Candidates).Should(Equal([]string{"A", "B"}))
		Ω(conf.Timeout).Should(Equal("1s"))
		Ω(conf.Bind).Should(Equal(":7373"))

		Ω(conf.Update(nil)).Should(Succeed())
		Ω(conf.Update(&Config{Timeout: "soon"})).ShouldNot(Succeed())
	})

	It("should default the name to the hostname", func() {
		conf := &Config{Name: "board"}
		name, err := conf.GetName()
		Ω(err).ShouldNot(HaveOccurred())
		Ω(name).Should(Equal("board"))

		conf.Name = ""
		name, err = conf.GetName()
		Ω(err).ShouldNot(HaveOccurred())
		Ω(name).ShouldNot(BeEmpty())
	})

	It("should be able to parse durations", func() {
		conf := &Config{Timeout: "10s", Uptime: "10s"}

		duration, err := conf.GetTimeout()
		Ω(err).ShouldNot(HaveOccurred())
		Ω(duration).Should(Equal(10 * time.Second))

		duration, err = conf.GetUptime()
		Ω(err).ShouldNot(HaveOccurred())
		Ω(duration).Should(Equal(10 * time.Second))
	})

	It("should fall back to info for unparseable log levels", func() {
		conf := &Config{LogLevel: "WARN"}
		Ω(conf.GetLogLevel()).Should(Equal(zerolog.WarnLevel))

		conf.LogLevel = "loud"
		Ω(conf.GetLogLevel()).Should(Equal(zerolog.InfoLevel))
	})

})
