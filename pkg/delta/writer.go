package delta

import (
	"io"
	"os"
	"path/filepath"

	"github.com/agentstation/inferdelta/pkg/constants"
	"github.com/agentstation/inferdelta/pkg/errors"
	"github.com/agentstation/inferdelta/pkg/rf2"
)

// Write writes the header and every line of the plan to w.
func (p *Plan) Write(w io.Writer) error {
	out := rf2.NewWriter(w)
	if err := out.WriteHeader(); err != nil {
		return err
	}
	for _, line := range p.Lines {
		if err := out.Write(line.Row); err != nil {
			return err
		}
	}
	return out.Flush()
}

// WriteFile writes the plan to path through a temporary file in the same
// directory, so a failed run never leaves a partial delta behind.
func (p *Plan) WriteFile(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = p.Write(tmp); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err = tmp.Chmod(constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err = tmp.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.WrapIO("rename", path, err)
	}
	return nil
}
