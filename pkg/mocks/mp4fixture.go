package mocks

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Track describes the video track of a synthesized ISO-BMFF file.
type Track struct {
	Width           int
	Height          int
	DurationMs      int
	SampleType      string // stsd entry type, e.g. "avc1", "hvc1", "av01"
	RotationDegrees int
	FrameRate       float64 // stts sample rate, 0 means 30
}

// videoTimescale is the mdhd timescale of the video track.
const videoTimescale = 90000

// MP4 builds minimal ISO-BMFF files (ftyp + moov [+ mdat]) for tests that
// need real container bytes without a codec.
type MP4 struct {
	video     Track
	audio     bool
	quicktime bool
	payload   int
	noStts    bool
	moovLast  bool
}

// NewMP4 starts a builder for a single video track.
func NewMP4(video Track) *MP4 {
	if video.SampleType == "" {
		video.SampleType = "avc1"
	}
	if video.FrameRate <= 0 {
		video.FrameRate = 30
	}
	return &MP4{video: video}
}

// QuickTime selects the "qt  " brand instead of "isom".
func (m *MP4) QuickTime(on bool) *MP4 {
	m.quicktime = on
	return m
}

// WithAudio adds a sound track.
func (m *MP4) WithAudio(on bool) *MP4 {
	m.audio = on
	return m
}

// WithPayload appends an mdat box carrying n zero bytes.
func (m *MP4) WithPayload(n int) *MP4 {
	m.payload = n
	return m
}

// WithoutSampleTiming drops the stts box from every track, producing a moov
// that is structurally incomplete.
func (m *MP4) WithoutSampleTiming() *MP4 {
	m.noStts = true
	return m
}

// MoovLast writes the mdat payload before the moov box, as encoders without
// a faststart pass do.
func (m *MP4) MoovLast(on bool) *MP4 {
	m.moovLast = on
	return m
}

// Bytes serializes the file.
func (m *MP4) Bytes() []byte {
	var out bytes.Buffer

	if m.quicktime {
		out.Write(box("ftyp", []byte("qt  "), u32(0x200), []byte("qt  ")))
	} else {
		out.Write(box("ftyp", []byte("isom"), u32(0x200), []byte("isom"), []byte("iso2"), []byte("avc1"), []byte("mp41")))
	}

	dur := uint32(m.video.DurationMs)
	traks := [][]byte{m.videoTrak(dur)}
	if m.audio {
		traks = append(traks, m.audioTrak(dur))
	}
	nextID := uint32(len(traks) + 1)
	moov := append([][]byte{mvhd(1000, dur, nextID)}, traks...)
	if m.payload > 0 && m.moovLast {
		out.Write(box("mdat", make([]byte, m.payload)))
	}
	out.Write(box("moov", moov...))
	if m.payload > 0 && !m.moovLast {
		out.Write(box("mdat", make([]byte, m.payload)))
	}
	return out.Bytes()
}

func (m *MP4) videoTrak(dur uint32) []byte {
	v := m.video
	entry := box(v.SampleType,
		make([]byte, 6), u16(1), // reserved, data_reference_index
		make([]byte, 16), // pre_defined, reserved
		u16(uint16(v.Width)), u16(uint16(v.Height)),
		u32(0x00480000), u32(0x00480000), // 72 dpi
		u32(0), u16(1), // reserved, frame_count
		make([]byte, 32), // compressorname
		u16(0x0018), u16(0xffff),
	)
	return box("trak",
		tkhd(1, dur, v.Width, v.Height, v.RotationDegrees, false),
		box("mdia",
			mdhd(videoTimescale, dur*(videoTimescale/1000)),
			hdlr("vide", "VideoHandler"),
			box("minf",
				fullbox("vmhd", 0, 1, make([]byte, 8)),
				m.stbl(fullbox("stsd", 0, 0, u32(1), entry), m.videoStts()),
			),
		),
	)
}

func (m *MP4) audioTrak(dur uint32) []byte {
	return box("trak",
		tkhd(2, dur, 0, 0, 0, true),
		box("mdia",
			mdhd(48000, dur*48),
			hdlr("soun", "SoundHandler"),
			box("minf",
				fullbox("smhd", 0, 0, make([]byte, 4)),
				m.stbl(fullbox("stsd", 0, 0, u32(0)), stts(0, 0)),
			),
		),
	)
}

func (m *MP4) stbl(stsd, timing []byte) []byte {
	if m.noStts {
		return box("stbl", stsd)
	}
	return box("stbl", stsd, timing)
}

// videoStts describes every sample with one constant delta.
func (m *MP4) videoStts() []byte {
	v := m.video
	delta := uint32(math.Round(videoTimescale / v.FrameRate))
	count := uint32(math.Round(float64(v.DurationMs) * v.FrameRate / 1000))
	if count == 0 {
		count = 1
	}
	return stts(count, delta)
}

// stts writes a single entry, or none when count is 0.
func stts(count, delta uint32) []byte {
	if count == 0 {
		return fullbox("stts", 0, 0, u32(0))
	}
	return fullbox("stts", 0, 0, u32(1), u32(count), u32(delta))
}

// WebMHeader returns an EBML header with DocType "webm" followed by an
// empty segment of unknown size.
func WebMHeader() []byte {
	body := [][]byte{
		{0x42, 0x86, 0x81, 0x01}, // EBMLVersion
		{0x42, 0xf7, 0x81, 0x01}, // EBMLReadVersion
		{0x42, 0xf2, 0x81, 0x04}, // EBMLMaxIDLength
		{0x42, 0xf3, 0x81, 0x08}, // EBMLMaxSizeLength
		{0x42, 0x82, 0x84, 'w', 'e', 'b', 'm'},
		{0x42, 0x87, 0x81, 0x04}, // DocTypeVersion
		{0x42, 0x85, 0x81, 0x02}, // DocTypeReadVersion
	}
	payload := bytes.Join(body, nil)

	var out bytes.Buffer
	out.Write([]byte{0x1a, 0x45, 0xdf, 0xa3, 0x80 | byte(len(payload))})
	out.Write(payload)
	out.Write([]byte{0x18, 0x53, 0x80, 0x67, 0x01, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	return out.Bytes()
}

func box(typ string, parts ...[]byte) []byte {
	payload := bytes.Join(parts, nil)
	out := make([]byte, 0, 8+len(payload))
	out = append(out, u32(uint32(8+len(payload)))...)
	out = append(out, typ...)
	return append(out, payload...)
}

func fullbox(typ string, version byte, flags uint32, parts ...[]byte) []byte {
	vf := u32(flags)
	vf[0] = version
	return box(typ, append([][]byte{vf}, parts...)...)
}

func mvhd(timescale, duration, nextTrackID uint32) []byte {
	return fullbox("mvhd", 0, 0,
		u32(0), u32(0), u32(timescale), u32(duration),
		u32(0x00010000), u16(0x0100), make([]byte, 10),
		matrix(0),
		make([]byte, 24),
		u32(nextTrackID),
	)
}

func tkhd(trackID, duration uint32, width, height, rotation int, audio bool) []byte {
	volume := uint16(0)
	if audio {
		volume = 0x0100
	}
	return fullbox("tkhd", 0, 3,
		u32(0), u32(0), u32(trackID), u32(0), u32(duration),
		make([]byte, 8),
		u16(0), u16(0), u16(volume), u16(0),
		matrix(rotation),
		u32(uint32(width)<<16), u32(uint32(height)<<16),
	)
}

func mdhd(timescale, duration uint32) []byte {
	return fullbox("mdhd", 0, 0, u32(0), u32(0), u32(timescale), u32(duration), u16(0x55c4), u16(0))
}

func hdlr(handler, name string) []byte {
	return fullbox("hdlr", 0, 0, u32(0), []byte(handler), make([]byte, 12), []byte(name), []byte{0})
}

// matrix returns a 3x3 display matrix rotating clockwise by degrees.
func matrix(degrees int) []byte {
	rad := float64(degrees) * math.Pi / 180
	fixed := func(v float64) []byte { return u32(uint32(int32(math.Round(v * 65536)))) }
	cos, sin := math.Cos(rad), math.Sin(rad)
	return bytes.Join([][]byte{
		fixed(cos), fixed(sin), u32(0),
		fixed(-sin), fixed(cos), u32(0),
		u32(0), u32(0), u32(0x40000000),
	}, nil)
}

func u16(v uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, v)
}

func u32(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}
