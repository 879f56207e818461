package siteheader_test

import (
	"io"
	"io/fs"
	"time"

	"impractical.co/siteheader"
)

// staticFS is an fs.FS of in-memory files, keyed by path.
type staticFS map[string]string

// withHeaderTemplates returns a copy of s that also contains the templates
// a siteheader.Header needs.
func (s staticFS) withHeaderTemplates() staticFS {
	res := staticFS{}
	headers := siteheader.Templates()
	paths, err := fs.Glob(headers, "*.tmpl")
	if err != nil {
		panic(err)
	}
	for _, path := range paths {
		contents, err := fs.ReadFile(headers, path)
		if err != nil {
			panic(err)
		}
		res[path] = string(contents)
	}
	for k, v := range s {
		res[k] = v
	}
	return res
}

// Open opens the named file.
func (s staticFS) Open(name string) (fs.File, error) {
	val, ok := s[name]
	if !ok {
		return nil, &fs.PathError{
			Op:   "open",
			Path: name,
			Err:  fs.ErrNotExist,
		}
	}
	return &staticFile{
		name:     name,
		contents: []byte(val),
	}, nil
}

type staticFile struct {
	name     string
	contents []byte
	offset   int
}

func (s *staticFile) Stat() (fs.FileInfo, error) {
	return s, nil
}

func (s *staticFile) Read(buf []byte) (int, error) {
	if s.offset >= len(s.contents) {
		return 0, io.EOF
	}
	n := copy(buf, s.contents[s.offset:])
	s.offset += n
	return n, nil
}

func (*staticFile) Close() error {
	return nil
}

func (s *staticFile) Name() string {
	return s.name
}

func (s *staticFile) Size() int64 {
	return int64(len(s.contents))
}

func (*staticFile) Mode() fs.FileMode {
	return 0400
}

func (*staticFile) ModTime() time.Time {
	return time.Now()
}

func (*staticFile) IsDir() bool {
	return false
}

func (*staticFile) Sys() any {
	return nil
}
