package cloudwriter

import (
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go/source"
)

type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}

// ParquetFile adapts a CloudWriter to the parquet source.ParquetFile
// interface. Cloud objects are write-only; reads and seek-from-end are
// rejected.
type ParquetFile struct {
	cloudWriter CloudWriter
	offset      int64
}

func NewParquetFile(cloudWriter CloudWriter) *ParquetFile {
	return &ParquetFile{cloudWriter: cloudWriter}
}

func (c *ParquetFile) Open(name string) (source.ParquetFile, error) {
	// Cloud objects are created implicitly on first write
	return c, nil
}

func (c *ParquetFile) Create(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *ParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *ParquetFile) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *ParquetFile) Write(p []byte) (n int, err error) {
	return c.cloudWriter.Write(p)
}

func (c *ParquetFile) Close() error {
	return c.cloudWriter.Close()
}
