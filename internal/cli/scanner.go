package cli

import (
	"github.com/toyz/splice/internal/utils"
)

// DescriptorScanner finds descriptor documents
type DescriptorScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDescriptorScanner creates a new descriptor scanner
func NewDescriptorScanner(fileProcessor *utils.FileProcessor) *DescriptorScanner {
	if fileProcessor == nil {
		fileProcessor = utils.NewFileProcessor()
	}
	return &DescriptorScanner{fileProcessor: fileProcessor}
}

// ScanDescriptors returns every descriptor document matched by the patterns,
// sorted. Go-style patterns like "./..." scan recursively; a plain directory
// is scanned on its own.
func (s *DescriptorScanner) ScanDescriptors(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPaths
	}
	return s.fileProcessor.FindFiles(patterns, utils.DescriptorFileFilter())
}
