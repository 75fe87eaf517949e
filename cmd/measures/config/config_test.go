package configcmder_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/measures/cmd/measures/config"
	"github.com/papercomputeco/measures/pkg/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	execute := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "measures-config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .measures dir so the manager picks it up
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".measures"), 0o755)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			Expect(execute("set", "storage.driver", "memory")).To(Succeed())

			_, err := os.Stat(filepath.Join(tmpDir, ".measures", "config.toml"))
			Expect(err).NotTo(HaveOccurred())

			cfger, err := config.NewConfiger(filepath.Join(tmpDir, ".measures"))
			Expect(err).NotTo(HaveOccurred())
			value, err := cfger.GetConfigValue("storage.driver")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal("memory"))
		})

		It("rejects unknown keys", func() {
			Expect(execute("set", "invalid_key", "value")).NotTo(Succeed())
		})

		It("rejects unknown storage drivers", func() {
			Expect(execute("set", "storage.driver", "mysql")).NotTo(Succeed())
		})

		It("requires exactly two arguments", func() {
			Expect(execute("set", "api.listen")).NotTo(Succeed())
		})

		It("rejects zero arguments", func() {
			Expect(execute("set")).NotTo(Succeed())
		})

		It("rejects invalid uint values", func() {
			Expect(execute("set", "worker.num_workers", "not-a-number")).NotTo(Succeed())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			Expect(execute("set", "api.listen", ":9090")).To(Succeed())
			Expect(execute("get", "api.listen")).To(Succeed())
		})

		It("runs without error for unset key", func() {
			Expect(execute("get", "eventstream.kafka_brokers")).To(Succeed())
		})

		It("rejects unknown keys", func() {
			Expect(execute("get", "invalid_key")).NotTo(Succeed())
		})

		It("requires exactly one argument", func() {
			Expect(execute("get")).NotTo(Succeed())
		})
	})

	Describe("list subcommand", func() {
		It("runs without error when no config exists", func() {
			Expect(execute("list")).To(Succeed())
		})

		It("runs without error when config has values", func() {
			Expect(execute("set", "history.path", "audit.enc")).To(Succeed())
			Expect(execute("list")).To(Succeed())
		})

		It("rejects any arguments", func() {
			Expect(execute("list", "extra")).NotTo(Succeed())
		})
	})
})
