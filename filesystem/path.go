package filesystem

import (
	"os"
)

func (p Path) Join(names ...string) Path {
	args := []string{string(p)}
	args = append(args, names...)
	return MakePath(args...)
}

func (p Path) Exists() (bool, error) {
	_, err := os.Lstat(string(p))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (p Path) IsDir() (bool, error) {
	info, err := os.Stat(string(p))
	if err != nil {
		return false, err
	}

	return info.IsDir(), nil
}

func (p Path) ReadFile() ([]byte, error) {
	return os.ReadFile(string(p))
}

func (p Path) ReadDir() ([]os.DirEntry, error) {
	return os.ReadDir(string(p))
}

func (p Path) String() string {
	return string(p)
}
