package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/amberhq/amber/pkg/config"
)

var _ = Describe("config loading", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	It("applies defaults when no config file exists", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.Load(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.Provider).To(Equal("sqlite"))
		Expect(cfg.Cache.Provider).To(Equal("local"))
		Expect(cfg.Cache.TTLHours).To(Equal(24))
		Expect(cfg.VectorStore.Provider).To(Equal("sqlite"))
		Expect(cfg.Embedding.Model).To(Equal("nomic-embed-text"))
		Expect(cfg.Events.Provider).To(Equal("none"))
		Expect(cfg.API.Listen).To(Equal(":8090"))
	})

	It("reads values from config.toml", func() {
		toml := `
[storage]
provider = "postgres"
postgres_dsn = "postgres://localhost/amber"

[cache]
ttl_hours = 6

[events]
provider = "kafka"
brokers = ["localhost:9092"]
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(toml), 0o644)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.Load(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.Provider).To(Equal("postgres"))
		Expect(cfg.Storage.PostgresDSN).To(Equal("postgres://localhost/amber"))
		Expect(cfg.Cache.TTLHours).To(Equal(6))
		Expect(cfg.Events.Provider).To(Equal("kafka"))
		Expect(cfg.Events.Brokers).To(Equal([]string{"localhost:9092"}))

		// Unset sections keep their defaults.
		Expect(cfg.API.Listen).To(Equal(":8090"))
	})

	It("lets environment variables override file values", func() {
		toml := "[api]\nlisten = \":7000\"\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(toml), 0o644)).To(Succeed())

		os.Setenv("AMBER_API_LISTEN", ":9999")
		DeferCleanup(func() { os.Unsetenv("AMBER_API_LISTEN") })

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.Load(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.API.Listen).To(Equal(":9999"))
	})

	It("loads custom extraction lexicons", func() {
		toml := `
[extract]
begin_cues = ["backstory:"]
back_ref_cues = ["as noted"]
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(toml), 0o644)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.Load(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Extract.BeginCues).To(Equal([]string{"backstory:"}))
		Expect(cfg.Extract.BackRefCues).To(Equal([]string{"as noted"}))
		Expect(cfg.Extract.EndCues).To(BeEmpty())
	})

	Describe("config keys", func() {
		It("recognizes every dotted key", func() {
			for _, key := range config.ValidConfigKeys() {
				Expect(config.IsValidConfigKey(key)).To(BeTrue(), "key %s", key)
			}
		})

		It("rejects unknown keys", func() {
			Expect(config.IsValidConfigKey("storage.unknown")).To(BeFalse())
			Expect(config.IsValidConfigKey("")).To(BeFalse())
		})
	})
})
