package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable the search and ingestion entry points need.
// It is always passed explicitly; there is no process-wide mutable default.
type Config struct {
	// Folders are the default roots scanned by search and indexed by ingest.
	Folders []string `yaml:"folders"`
	// DenyDirs are directory names skipped during any traversal.
	DenyDirs []string `yaml:"deny_dirs"`
	// DataDir holds the persisted vector index and metadata sidecar.
	DataDir string `yaml:"data_dir"`

	MaxResults int `yaml:"max_results"`

	Chunk ChunkConfig `yaml:"chunk"`
	Embed LLMConfig   `yaml:"embed_llm"`
	Chat  LLMConfig   `yaml:"chat_llm"`
	RAG   RAGConfig   `yaml:"rag"`
}

// LLMConfig describes one model endpoint, either the embedding model or the
// chat model used for answer generation.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "ollama" or "openai"
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Key      string `yaml:"key"`
}

type ChunkConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

type RAGConfig struct {
	// TopK is how many chunks are retrieved per question.
	TopK int `yaml:"top_k"`
	// PerSourceCap bounds chunks from a single document in the context.
	PerSourceCap int `yaml:"per_source_cap"`
	// MinSimilarity is the low-confidence cutoff below which the assembler
	// reports insufficient information instead of answering.
	MinSimilarity float32 `yaml:"min_similarity"`
}

const appDirName = ".localfind"

// Default returns a Config populated with the built-in defaults, rooted in
// the user's home directory.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Folders: []string{
			filepath.Join(home, "Documents"),
			filepath.Join(home, "Downloads"),
			filepath.Join(home, "Desktop"),
		},
		DenyDirs: []string{
			".git", ".svn", ".hg",
			"node_modules", "vendor", "__pycache__",
			".venv", "venv", "dist", "build", "target",
		},
		DataDir:    filepath.Join(home, appDirName, "index"),
		MaxResults: 50,
		Chunk:      ChunkConfig{Size: 1200, Overlap: 200},
		Embed:      LLMConfig{Provider: "ollama", BaseURL: "http://localhost:11434", Model: "nomic-embed-text"},
		Chat:       LLMConfig{Provider: "ollama", BaseURL: "http://localhost:11434", Model: "mistral"},
		RAG:        RAGConfig{TopK: 12, PerSourceCap: 3, MinSimilarity: 0.2},
	}
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, appDirName, "config.yaml")
}

// Load reads a YAML config file and overlays it on the defaults. A missing
// file is not an error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 50
	}
	if cfg.Chunk.Size <= 0 {
		cfg.Chunk.Size = 1200
	}
	if cfg.Chunk.Overlap < 0 || cfg.Chunk.Overlap >= cfg.Chunk.Size {
		cfg.Chunk.Overlap = cfg.Chunk.Size / 6
	}
	return cfg, nil
}
