package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/cfgnorm/internal/recognize"
)

func Test_parse(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    Config
		expectErr bool
	}{
		{
			name:   "empty file gives defaults",
			input:  "",
			expect: Default(),
		},
		{
			name: "every key",
			input: `grammar = "rules.txt"
stop_word = "stop"
show_stages = false
show_diffs = true
show_stats = true
max_steps = 500
normalize_unicode = false
width = 100
journal = "sqlite:data"
`,
			expect: Config{
				GrammarFile:      "rules.txt",
				StopWord:         "stop",
				ShowStages:       false,
				ShowDiffs:        true,
				ShowStats:        true,
				MaxSteps:         500,
				NormalizeUnicode: false,
				Width:            100,
				Journal:          Database{Type: DatabaseSQLite, DataDir: "data"},
			},
		},
		{
			name:  "in-memory journal",
			input: `journal = "inmem"`,
			expect: func() Config {
				cfg := Default()
				cfg.Journal = Database{Type: DatabaseInMemory}
				return cfg
			}(),
		},
		{
			name:      "unknown key",
			input:     `colour = "blue"`,
			expectErr: true,
		},
		{
			name:      "bad journal",
			input:     `journal = "postgres:somewhere"`,
			expectErr: true,
		},
		{
			name:      "not toml",
			input:     `grammar: input.txt`,
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := parse(tc.input)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			if !assert.NoError(t, err) {
				return
			}

			assert.Equal(t, tc.expect, actual)
		})
	}
}

func Test_Load(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "cfgn.toml")
	err := os.WriteFile(path, []byte("width = 60\n"), 0644)
	if !assert.NoError(err) {
		return
	}

	cfg, err := Load(path)
	assert.NoError(err)
	assert.Equal(60, cfg.Width)
	assert.Equal(DefaultGrammarFile, cfg.GrammarFile)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(err, os.ErrNotExist)
}

func Test_Config_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       Config
		expectErr bool
	}{
		{name: "defaults", cfg: Default()},
		{name: "filled zero value", cfg: Config{}.FillDefaults()},
		{name: "zero value", cfg: Config{}, expectErr: true},
		{name: "blank stop word", cfg: Config{StopWord: "  "}.FillDefaults(), expectErr: true},
		{name: "negative budget", cfg: Config{MaxSteps: -1}.FillDefaults(), expectErr: true},
		{name: "narrow", cfg: Config{Width: 5}.FillDefaults(), expectErr: true},
		{
			name:      "sqlite journal without dir",
			cfg:       Config{Journal: Database{Type: DatabaseSQLite}}.FillDefaults(),
			expectErr: true,
		},
		{
			name: "in-memory journal",
			cfg:  Config{Journal: Database{Type: DatabaseInMemory}}.FillDefaults(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_Config_FillDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg := Config{Width: 120}.FillDefaults()

	assert.Equal(120, cfg.Width)
	assert.Equal(DefaultStopWord, cfg.StopWord)
	assert.Equal(recognize.DefaultMaxSteps, cfg.MaxSteps)
	assert.Equal(DatabaseNone, cfg.Journal.Type)
}

func Test_ParseDBConnString(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    Database
		expectErr bool
	}{
		{name: "inmem", input: "inmem", expect: Database{Type: DatabaseInMemory}},
		{name: "inmem is case-insensitive", input: "INMEM", expect: Database{Type: DatabaseInMemory}},
		{name: "sqlite", input: "sqlite:/var/data", expect: Database{Type: DatabaseSQLite, DataDir: "/var/data"}},
		{name: "sqlite without dir", input: "sqlite", expectErr: true},
		{name: "sqlite with blank dir", input: "sqlite:  ", expectErr: true},
		{name: "inmem with params", input: "inmem:foo", expectErr: true},
		{name: "none", input: "none", expectErr: true},
		{name: "unknown", input: "mysql:x", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := ParseDBConnString(tc.input)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			if !assert.NoError(t, err) {
				return
			}

			assert.Equal(t, tc.expect, actual)
			assert.Equal(t, tc.expect, mustParse(t, actual.String()))
		})
	}
}

func Test_Database_Connect(t *testing.T) {
	assert := assert.New(t)

	store, err := Database{Type: DatabaseInMemory}.Connect()
	if assert.NoError(err) {
		assert.NoError(store.Close())
	}

	dir := filepath.Join(t.TempDir(), "nested", "data")
	store, err = Database{Type: DatabaseSQLite, DataDir: dir}.Connect()
	if assert.NoError(err) {
		assert.DirExists(dir)
		assert.NoError(store.Close())
	}

	_, err = Database{Type: DatabaseNone}.Connect()
	assert.Error(err)
}

func mustParse(t *testing.T, s string) Database {
	db, err := ParseDBConnString(s)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return db
}
