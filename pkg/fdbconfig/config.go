package fdbconfig

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ecmwf/fdb-go/pkg/ferrors"
)

// RootSpec is one entry of the root directory search list a DB may live
// under. ReadOnly roots are never chosen for new archives; Visit controls
// whether wildcard listings descend into it at all.
type RootSpec struct {
	Path     string `yaml:"path"`
	ReadOnly bool   `yaml:"readOnly"`
	Visit    bool   `yaml:"visit"`
}

// Lustre carries the striping knobs for data files on Lustre-backed roots.
// Zero values mean "use the filesystem default". Nothing in this module
// applies them to the files it creates.
type Lustre struct {
	StripeCount int `yaml:"stripeCount"`
	StripeSize  int `yaml:"stripeSize"`
}

// Config is the full set of engine knobs.
type Config struct {
	Roots      []RootSpec `yaml:"roots"`
	SchemaFile string     `yaml:"schemaFile"`

	MaxNbDBsOpen int `yaml:"maxNbDBsOpen"`

	WriterDB string `yaml:"writerDB"`
	ReaderDB string `yaml:"readerDB"`

	CheckDoubleInsert       bool `yaml:"checkDoubleInsert"`
	CheckMissingKeysOnWrite bool `yaml:"checkMissingKeysOnWrite"`

	BlockSize       int  `yaml:"blockSize"`
	AsyncWrite      bool `yaml:"asyncWrite"`
	RoundTocRecords int  `yaml:"roundTocRecords"`

	OnlyCreatorCanWrite bool     `yaml:"onlyCreatorCanWrite"`
	SuperUsers          []uint32 `yaml:"superUsers"`

	Lustre Lustre `yaml:"lustre"`

	MatchFirstRule bool `yaml:"matchFirstRule"`
	UseSubToc      bool `yaml:"useSubToc"`
}

// Default returns the engine's out-of-the-box configuration.
func Default() Config {
	return Config{
		MaxNbDBsOpen:            64,
		WriterDB:                "toc",
		ReaderDB:                "toc",
		CheckDoubleInsert:       true,
		CheckMissingKeysOnWrite: true,
		BlockSize:               4096,
		RoundTocRecords:         1024,
		MatchFirstRule:          true,
		UseSubToc:               false,
	}
}

// Load reads path as YAML on top of Default, then applies environment
// variable overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, &ferrors.IOError{Op: "read config", Path: path, Err: err}
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, &ferrors.IOError{Op: "parse config", Path: path, Err: err}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides cfg fields from the FDB_* environment variables.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("FDB_ROOT"); ok {
		cfg.Roots = append(cfg.Roots, RootSpec{Path: v, Visit: true})
	}
	if v, ok := os.LookupEnv("FDB_SCHEMA_FILE"); ok {
		cfg.SchemaFile = v
	}
	if v, ok := os.LookupEnv("FDB_MAX_NB_DBS_OPEN"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxNbDBsOpen = n
		}
	}
	if v, ok := os.LookupEnv("FDB_WRITER_DB"); ok {
		cfg.WriterDB = v
	}
	if v, ok := os.LookupEnv("FDB_READER_DB"); ok {
		cfg.ReaderDB = v
	}
	if v, ok := os.LookupEnv("FDB_CHECK_DOUBLE_INSERT"); ok {
		cfg.CheckDoubleInsert = parseBool(v, cfg.CheckDoubleInsert)
	}
	if v, ok := os.LookupEnv("FDB_ASYNC_WRITE"); ok {
		cfg.AsyncWrite = parseBool(v, cfg.AsyncWrite)
	}
	if v, ok := os.LookupEnv("FDB5_SUB_TOCS"); ok {
		cfg.UseSubToc = parseBool(v, cfg.UseSubToc)
	}
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}
