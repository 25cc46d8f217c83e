package io

import (
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/ezrec/m20/word"
)

// File is the backing store of a physical drum or tape unit.
// Words are addressed positionally, so no seek state is shared.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
	// Stat describes the file; only the size is used.
	Stat() (fs.FileInfo, error)
}

var _ File = (*os.File)(nil)

// WORD_BYTES is the size of one word in a backing file.
const WORD_BYTES = 8

// byteOrder of words in backing files.
var byteOrder = binary.LittleEndian

// OpenFile opens, or creates, a backing file.
func OpenFile(path string) (file File, err error) {
	file, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	return
}

// fileWords returns the number of whole words in the file.
func fileWords(file File) (n int64, err error) {
	info, err := file.Stat()
	if err != nil {
		return
	}
	n = info.Size() / WORD_BYTES
	return
}

// readWords fills buf from the word offset. A short file is not an error;
// n is the count of whole words read.
func readWords(file io.ReaderAt, offset int64, buf []word.Word) (n int, err error) {
	data := make([]byte, len(buf)*WORD_BYTES)
	count, err := file.ReadAt(data, offset*WORD_BYTES)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	if err != nil {
		return
	}

	n = count / WORD_BYTES
	for i := range n {
		buf[i] = word.Word(byteOrder.Uint64(data[i*WORD_BYTES:]))
	}
	return
}

// writeWords stores buf at the word offset.
func writeWords(file io.WriterAt, offset int64, buf ...word.Word) (err error) {
	data := make([]byte, 0, len(buf)*WORD_BYTES)
	for _, w := range buf {
		data = byteOrder.AppendUint64(data, uint64(w))
	}
	_, err = file.WriteAt(data, offset*WORD_BYTES)
	return
}
