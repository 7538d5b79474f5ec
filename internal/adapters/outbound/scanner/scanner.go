package scanner

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var skipDirs = map[string]bool{
	"schemas":      true,
	"node_modules": true,
	"vendor":       true,
}

var contractExts = map[string]bool{
	".raml": true,
	".yaml": true,
	".yml":  true,
	".json": true,
}

// FileScanner implements domain.FileScanner by walking directory arguments.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

// Expand keeps file arguments in the order given and replaces each directory
// with the API documents found beneath it, in lexical order. Arguments that do
// not exist are kept so the parser can report them.
func (s *FileScanner) Expand(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		dir := strings.TrimPrefix(arg, "file://")
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			files = append(files, arg)
			continue
		}

		found, err := s.walk(dir)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func (s *FileScanner) walk(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		if contractExts[strings.ToLower(filepath.Ext(d.Name()))] && isAPIDocument(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// isAPIDocument reports whether path holds a RAML root document or an
// OpenAPI document. RAML fragments and plain data files are skipped; they are
// reached through !include or $ref from their root.
func isAPIDocument(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	line, _ := bufio.NewReader(bytes.NewReader(data)).ReadString('\n')
	if fields := strings.Fields(strings.TrimSpace(line)); len(fields) > 0 && fields[0] == "#%RAML" {
		return len(fields) == 2
	}

	var doc struct {
		OpenAPI string `yaml:"openapi"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false
	}
	return doc.OpenAPI != ""
}
