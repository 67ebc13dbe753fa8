package metadata

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/user/clipforge/pkg/pipeline"
	"github.com/user/clipforge/pkg/ports"
)

// sniffLen matches the mimetype default read limit.
const sniffLen = 3072

// maxHeaderBox caps the size of an ftyp or moov box read from a path source.
const maxHeaderBox = 256 << 20

// sourceBytes is what metadata extraction needs from a source: a prefix for
// container sniffing, the ISO-BMFF header boxes (ftyp and moov) and the
// total size. For in-memory sources both views are the full buffer.
type sourceBytes struct {
	head   []byte
	header []byte
	size   int64
}

func (e *Extractor) read(src ports.VideoSource) (sourceBytes, error) {
	if len(src.Data) > 0 {
		return sourceBytes{head: src.Data, header: src.Data, size: int64(len(src.Data))}, nil
	}
	if src.Path == "" {
		return sourceBytes{}, fmt.Errorf("%w: empty source", pipeline.ErrSourceUnreadable)
	}

	f, err := e.fs.Open(src.Path)
	if err != nil {
		return sourceBytes{}, fmt.Errorf("%w: %v", pipeline.ErrSourceUnreadable, err)
	}
	defer f.Close()

	out, err := readHeaders(f)
	if err != nil {
		return sourceBytes{}, fmt.Errorf("%w: %s: %v", pipeline.ErrSourceUnreadable, src.Name(), err)
	}
	if out.size == 0 {
		return sourceBytes{}, fmt.Errorf("%w: %s is empty", pipeline.ErrSourceUnreadable, src.Name())
	}
	return out, nil
}

// readHeaders reads the sniff prefix and, for ISO-BMFF files, walks the
// top-level boxes, keeping ftyp and moov and seeking over everything else.
func readHeaders(r io.ReadSeeker) (sourceBytes, error) {
	var out sourceBytes

	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return out, err
	}
	out.size = size
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return out, err
	}

	head := make([]byte, min(size, sniffLen))
	if _, err := io.ReadFull(r, head); err != nil {
		return out, err
	}
	out.head = head
	if !isISOBMFF(head) {
		return out, nil
	}

	var hdr [16]byte
	for pos := int64(0); pos+8 <= size; {
		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return out, err
		}
		if _, err := io.ReadFull(r, hdr[:8]); err != nil {
			return out, err
		}
		boxSize := int64(binary.BigEndian.Uint32(hdr[:4]))
		typ := string(hdr[4:8])
		headerLen := int64(8)
		switch boxSize {
		case 0:
			boxSize = size - pos
		case 1:
			if _, err := io.ReadFull(r, hdr[8:16]); err != nil {
				return out, err
			}
			boxSize = int64(binary.BigEndian.Uint64(hdr[8:16]))
			headerLen = 16
		}
		if boxSize < headerLen {
			return out, fmt.Errorf("box %q at %d has size %d", typ, pos, boxSize)
		}

		if typ == "ftyp" || typ == "moov" {
			if boxSize > maxHeaderBox {
				return out, fmt.Errorf("%s box of %d bytes", typ, boxSize)
			}
			// a box running past the end is kept truncated so the parser reports it
			n := min(boxSize, size-pos)
			if n < headerLen {
				return out, fmt.Errorf("box %q at %d is truncated", typ, pos)
			}
			buf := make([]byte, n)
			copy(buf, hdr[:headerLen])
			if _, err := io.ReadFull(r, buf[headerLen:]); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
				return out, err
			}
			out.header = append(out.header, buf...)
			if typ == "moov" {
				return out, nil
			}
		}
		pos += boxSize
	}
	return out, nil
}
