package assets

import (
	"io/fs"

	"github.com/pkg/errors"

	"github.com/redhat-openshift-ecosystem/markdown-test-report/data"
)

// efs is the file system the report templates are loaded from. It defaults
// to the embedded templates and can be replaced by a directory on disk.
var efs fs.FS = data.Templates

func GetData() fs.FS {
	return efs
}

func UpdateData(d fs.FS) {
	efs = d
}

// ReadFile reads a single file from the current file system.
func ReadFile(path string) ([]byte, error) {
	buf, err := fs.ReadFile(efs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}
	return buf, nil
}

// GetAllFilenames return all file names from an path in the file system.
func GetAllFilenames(efs fs.FS, path string) (files []string, err error) {
	if err := fs.WalkDir(efs, path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		files = append(files, path)

		return nil
	}); err != nil {
		return nil, err
	}

	return files, nil
}
