package persist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// filePerm is the permission applied to written files.
const filePerm = 0o644

// WriteFileAtomic writes path through a temporary file in the same directory
// and renames it into place. On any failure the temporary file is removed and
// an existing file at path is left untouched.
func WriteFileAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	buffered := bufio.NewWriter(tmp)

	err = write(buffered)
	if err != nil {
		return err
	}

	err = buffered.Flush()
	if err != nil {
		return fmt.Errorf("flush %s: %w", tmpName, err)
	}

	err = tmp.Chmod(filePerm)
	if err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}

	err = os.Rename(tmpName, path)
	if err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}

	return nil
}

// SaveFile encodes state with codec and writes it atomically to path.
func SaveFile(path string, codec Codec, state any) error {
	err := WriteFileAtomic(path, func(w io.Writer) error {
		return codec.Encode(w, state)
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	return nil
}

// LoadFile decodes the file at path into state, which must be a pointer.
func LoadFile(path string, codec Codec, state any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	err = codec.Decode(bufio.NewReader(file), state)
	if err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	return nil
}

// SaveState saves state to dir/basename plus the codec's extension.
func SaveState(dir, basename string, codec Codec, state any) error {
	return SaveFile(filepath.Join(dir, basename+codec.Extension()), codec, state)
}

// LoadState loads state from dir/basename plus the codec's extension.
func LoadState(dir, basename string, codec Codec, state any) error {
	return LoadFile(filepath.Join(dir, basename+codec.Extension()), codec, state)
}
