package configs

import (
	"fmt"
	"os"

	"DocAnalystAI/app/utils"
)

// Validate checks the preconditions of a run in order: credential, knowledge directory, documents.
// The first failure is returned.
func Validate(cfg *Config) error {
	if cfg.LLM.APIKey == "" {
		return configErr("LLM_API_KEY", ErrMissingCredential)
	}

	info, err := os.Stat(cfg.Knowledge.Dir)
	if err != nil || !info.IsDir() {
		return configErr("KNOWLEDGE_DIR", fmt.Errorf("%w: %s", ErrKnowledgeDirectoryNotFound, cfg.Knowledge.Dir))
	}

	docs, err := utils.LoadFilesFromDir(cfg.Knowledge.Dir, cfg.Knowledge.Pattern)
	if err != nil {
		return configErr("KNOWLEDGE_DIR", err)
	}
	if len(docs) == 0 {
		return configErr("KNOWLEDGE_DIR", fmt.Errorf("%w: %s in %s", ErrNoDocumentsFound, cfg.Knowledge.Pattern, cfg.Knowledge.Dir))
	}

	return nil
}
