package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// DescriptorSuffix marks descriptor documents
	DescriptorSuffix = ".splice.yaml"
	// PlanSuffix marks plan documents written by the generator
	PlanSuffix = ".plan.yaml"
	// RecursiveSuffix marks a path pattern that includes every subdirectory
	RecursiveSuffix = "/..."
)

// FileProcessor provides utilities for common file processing operations
type FileProcessor struct {
	fileReader *FileReader
}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{
		fileReader: NewFileReader(),
	}
}

// NewFileProcessorWithReader creates a file processor with an existing FileReader
func NewFileProcessorWithReader(reader *FileReader) *FileProcessor {
	return &FileProcessor{
		fileReader: reader,
	}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
	NoRecurse       bool // only the files directly inside the root
}

// SuffixFileFilter accepts regular files whose name ends with suffix
func SuffixFileFilter(suffix string) FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		return strings.HasSuffix(info.Name(), suffix)
	}
}

// DescriptorFileFilter accepts descriptor documents
func DescriptorFileFilter() FileFilter {
	return SuffixFileFilter(DescriptorSuffix)
}

// PlanFileFilter accepts generated plan documents
func PlanFileFilter() FileFilter {
	return SuffixFileFilter(PlanSuffix)
}

// DefaultDirectoryFilter skips common directories that shouldn't contain descriptors
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		".git":         true,
		".svn":         true,
		".hg":          true,
		"testdata":     true,
		"build":        true,
		"dist":         true,
		"target":       true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()

		// Skip hidden directories
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}

		return !skipDirs[name]
	}
}

type fileInfoDirEntry struct {
	info os.FileInfo
}

func (f fileInfoDirEntry) Name() string               { return f.info.Name() }
func (f fileInfoDirEntry) IsDir() bool                { return f.info.IsDir() }
func (f fileInfoDirEntry) Type() os.FileMode          { return f.info.Mode().Type() }
func (f fileInfoDirEntry) Info() (os.FileInfo, error) { return f.info, nil }

// WalkFiles walks through files in a directory tree with filtering. The root
// itself is never rejected by the directory filter.
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string
	root := filepath.Clean(rootDir)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		dirEntry := fileInfoDirEntry{info: info}

		if info.IsDir() {
			if path == root {
				return nil
			}
			if options.NoRecurse {
				return filepath.SkipDir
			}
			if options.DirectoryFilter != nil && !options.DirectoryFilter(path, dirEntry) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, dirEntry) {
			matchedFiles = append(matchedFiles, path)
		}
		return nil
	})

	return matchedFiles, err
}

// FindFiles expands path patterns into matching files. A pattern ending in
// "/..." searches its directory recursively, any other directory is searched
// on its own and a plain file is taken as is. The result is sorted and free of
// duplicates.
func (fp *FileProcessor) FindFiles(patterns []string, filter FileFilter) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		dir, recursive := SplitPattern(pattern)

		info, err := os.Stat(dir)
		if err != nil {
			return nil, WrapProcessError(fmt.Sprintf("path %s", pattern), err)
		}

		var found []string
		if info.IsDir() {
			found, err = fp.WalkFiles(dir, FileWalkOptions{
				FileFilter:      filter,
				DirectoryFilter: DefaultDirectoryFilter(),
				NoRecurse:       !recursive,
			})
			if err != nil {
				return nil, WrapProcessError(fmt.Sprintf("directory walk %s", dir), err)
			}
		} else {
			found = []string{filepath.Clean(dir)}
		}

		for _, file := range found {
			if !seen[file] {
				seen[file] = true
				files = append(files, file)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// SplitPattern separates a path pattern into its base directory and whether
// it asks for recursion. "./..." and "..." both mean the current directory.
func SplitPattern(pattern string) (string, bool) {
	if pattern == "..." {
		return ".", true
	}
	if strings.HasSuffix(pattern, RecursiveSuffix) {
		dir := strings.TrimSuffix(pattern, RecursiveSuffix)
		if dir == "" {
			dir = "/"
		}
		return dir, true
	}
	if pattern == "" {
		return ".", false
	}
	return pattern, false
}

// RemoveFiles deletes every file matching filter under the given patterns and
// returns the removed paths. Files that vanish in between are ignored.
func (fp *FileProcessor) RemoveFiles(patterns []string, filter FileFilter) ([]string, error) {
	files, err := fp.FindFiles(patterns, filter)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, file := range files {
		fp.fileReader.InvalidateFile(file)
		if err := os.Remove(file); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, WrapProcessError(fmt.Sprintf("file removal %s", file), err)
		}
		removed = append(removed, file)
	}
	return removed, nil
}

// GetFileReader returns the underlying FileReader for advanced operations
func (fp *FileProcessor) GetFileReader() *FileReader {
	return fp.fileReader
}
