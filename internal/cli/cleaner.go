package cli

import (
	"github.com/toyz/splice/internal/utils"
)

// Cleaner handles cleaning up generated plan documents
type Cleaner struct {
	fileProcessor *utils.FileProcessor
}

// NewCleaner creates a new cleaner
func NewCleaner(fileProcessor *utils.FileProcessor) *Cleaner {
	if fileProcessor == nil {
		fileProcessor = utils.NewFileProcessor()
	}
	return &Cleaner{fileProcessor: fileProcessor}
}

// CleanGeneratedFiles removes every plan document matched by the patterns and
// returns the removed paths
func (c *Cleaner) CleanGeneratedFiles(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPaths
	}
	removed, err := c.fileProcessor.RemoveFiles(patterns, utils.PlanFileFilter())
	if err != nil {
		return removed, utils.WrapProcessError("plan cleanup", err)
	}
	return removed, nil
}
