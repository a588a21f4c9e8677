package common

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// FileReader reads local content files with a size ceiling
type FileReader struct {
	logger  zerolog.Logger
	maxSize int64
}

// NewFileReader creates a new FileReader. maxSize <= 0 disables the limit.
func NewFileReader(maxSize int64, logger zerolog.Logger) *FileReader {
	return &FileReader{
		logger:  logger.With().Str("component", "FileReader").Logger(),
		maxSize: maxSize,
	}
}

// ReadFile returns the file content, failing with ErrContentTooLarge when the
// file is bigger than the configured limit.
func (fr *FileReader) ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, WrapError(err, fmt.Sprintf("failed to stat file: %s", path))
	}
	if info.IsDir() {
		return nil, NewValidationError("path", path, "is a directory")
	}
	if fr.maxSize > 0 && info.Size() > fr.maxSize {
		return nil, WrapErrorf(ErrContentTooLarge, "file %s is %d bytes", path, info.Size())
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, WrapError(err, fmt.Sprintf("failed to open file: %s", path))
	}
	defer func() {
		if err := file.Close(); err != nil {
			fr.logger.Error().Err(err).Str("path", path).Msg("Failed to close file.")
		}
	}()

	return ReadLimited(file, fr.maxSize)
}

// ReadLimited reads r fully, failing with ErrContentTooLarge once more than
// limit bytes are available. limit <= 0 reads without a ceiling.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrContentTooLarge
	}
	return data, nil
}
