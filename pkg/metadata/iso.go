package metadata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/clipforge/pkg/pipeline"
)

type isoInfo struct {
	durationMs int64
	width      int
	height     int
	rotation   int
	codec      string
	frameRate  float64
	hasAudio   bool
}

// sampleEntryCodecs maps stsd sample entry types to codec names.
var sampleEntryCodecs = map[string]string{
	"avc1": "h264",
	"avc3": "h264",
	"hvc1": "hevc",
	"hev1": "hevc",
	"av01": "av1",
	"vp09": "vp9",
	"mp4v": "mpeg4",
}

func parseISOBMFF(data []byte) (isoInfo, error) {
	var info isoInfo

	f, err := decodeMP4(data)
	if err != nil {
		return info, err
	}

	moov := f.Moov
	if moov == nil && f.Init != nil {
		moov = f.Init.Moov
	}
	if moov == nil || moov.Mvhd == nil {
		return info, fmt.Errorf("%w: missing moov box", pipeline.ErrSourceUnreadable)
	}

	if ts := moov.Mvhd.Timescale; ts > 0 {
		info.durationMs = int64(math.Round(float64(moov.Mvhd.Duration) * 1000 / float64(ts)))
	}

	var video *mp4.TrakBox
	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
			continue
		}
		switch trak.Mdia.Hdlr.HandlerType {
		case "vide":
			if video == nil {
				video = trak
			}
		case "soun":
			info.hasAudio = true
		}
	}
	if video == nil {
		return info, fmt.Errorf("%w: no video track", pipeline.ErrUnsupportedFormat)
	}

	codec, entryType := trackCodec(video)
	if codec == "" {
		return info, fmt.Errorf("%w: video sample entry %q", pipeline.ErrUnsupportedFormat, entryType)
	}
	info.codec = codec

	if video.Tkhd != nil {
		info.width = int(uint32(video.Tkhd.Width) >> 16)
		info.height = int(uint32(video.Tkhd.Height) >> 16)
	}
	info.frameRate = trackFrameRate(video)

	if rot, ok := videoRotation(data); ok {
		info.rotation = rot
	}
	return info, nil
}

// decodeMP4 runs the mp4ff decoder, which dereferences optional boxes such as
// the first trak's stts without checks. A panic there means the moov is
// malformed.
func decodeMP4(data []byte) (f *mp4.File, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, fmt.Errorf("%w: decode mp4: %v", pipeline.ErrSourceUnreadable, r)
		}
	}()
	f, err = mp4.DecodeFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode mp4: %v", pipeline.ErrSourceUnreadable, err)
	}
	return f, nil
}

func trackCodec(trak *mp4.TrakBox) (codec, entryType string) {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return "", ""
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		entryType = child.Type()
		if c, ok := sampleEntryCodecs[entryType]; ok {
			return c, entryType
		}
	}
	return "", entryType
}

func trackFrameRate(trak *mp4.TrakBox) float64 {
	if trak.Mdia.Mdhd == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return 0
	}
	stts := trak.Mdia.Minf.Stbl.Stts
	if stts == nil || len(stts.SampleTimeDelta) == 0 || stts.SampleTimeDelta[0] == 0 {
		return 0
	}
	return float64(trak.Mdia.Mdhd.Timescale) / float64(stts.SampleTimeDelta[0])
}

// videoRotation reads the display matrix of the first video track's tkhd.
// The decoded TkhdBox does not carry the matrix, so the boxes are walked directly.
func videoRotation(data []byte) (int, bool) {
	moov, ok := findBox(data, "moov")
	if !ok {
		return 0, false
	}
	for _, trak := range childBoxes(moov, "trak") {
		mdia, ok := findBox(trak, "mdia")
		if !ok {
			continue
		}
		hdlr, ok := findBox(mdia, "hdlr")
		if !ok || len(hdlr) < 12 || string(hdlr[8:12]) != "vide" {
			continue
		}
		tkhd, ok := findBox(trak, "tkhd")
		if !ok || len(tkhd) < 1 {
			return 0, false
		}
		off := 40
		if tkhd[0] == 1 {
			off = 52
		}
		if len(tkhd) < off+36 {
			return 0, false
		}
		a := fixed16(tkhd[off:])
		b := fixed16(tkhd[off+4:])
		deg := int(math.Round(math.Atan2(b, a) * 180 / math.Pi))
		return NormalizeRotation(deg), true
	}
	return 0, false
}

func fixed16(b []byte) float64 {
	return float64(int32(binary.BigEndian.Uint32(b))) / 65536
}

// findBox returns the payload of the first child box of the given type.
func findBox(data []byte, typ string) ([]byte, bool) {
	boxes := childBoxes(data, typ)
	if len(boxes) == 0 {
		return nil, false
	}
	return boxes[0], true
}

// childBoxes returns the payloads of all boxes of the given type at this level.
func childBoxes(data []byte, typ string) [][]byte {
	var out [][]byte
	for pos := 0; pos+8 <= len(data); {
		size := uint64(binary.BigEndian.Uint32(data[pos:]))
		name := string(data[pos+4 : pos+8])
		header := uint64(8)
		switch size {
		case 0:
			size = uint64(len(data) - pos)
		case 1:
			if pos+16 > len(data) {
				return out
			}
			size = binary.BigEndian.Uint64(data[pos+8:])
			header = 16
		}
		if size < header || uint64(pos)+size > uint64(len(data)) {
			return out
		}
		if name == typ {
			out = append(out, data[uint64(pos)+header:uint64(pos)+size])
		}
		pos += int(size)
	}
	return out
}
