package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ticksPerSecond is the 100ns tick unit diarization offsets are expressed in
const ticksPerSecond = 10_000_000

// PCM holds decoded WAV audio: raw sample frames plus their format
type PCM struct {
	SampleRate  int
	SampleWidth int // bytes per sample
	Channels    int
	Frames      []byte
}

// NumFrames returns the number of complete sample frames
func (p *PCM) NumFrames() int {
	bytesPerFrame := p.SampleWidth * p.Channels
	if bytesPerFrame == 0 {
		return 0
	}
	return len(p.Frames) / bytesPerFrame
}

// Duration returns the audio length in seconds
func (p *PCM) Duration() float64 {
	if p.SampleRate == 0 {
		return 0
	}
	return float64(p.NumFrames()) / float64(p.SampleRate)
}

// SameFormat reports whether two clips can be concatenated as-is
func (p *PCM) SameFormat(other *PCM) bool {
	return p.SampleRate == other.SampleRate &&
		p.SampleWidth == other.SampleWidth &&
		p.Channels == other.Channels
}

// IntroClip is one speaker's voice sample, queued for prepending
type IntroClip struct {
	DisplayName string
	PCM         *PCM
}

// IntroSpan maps a span of the combined audio back to the speaker whose
// intro clip occupies it. Offsets are in 100ns ticks.
type IntroSpan struct {
	DisplayName string
	StartTick   int64
	EndTick     int64
}

// Contains reports whether the tick offset falls inside this span
func (s IntroSpan) Contains(tick int64) bool {
	return s.StartTick <= tick && tick < s.EndTick
}

// FramesToTicks converts a frame index to a 100ns tick offset
func FramesToTicks(frameIndex, sampleRate int) int64 {
	if sampleRate == 0 {
		return 0
	}
	return int64(float64(frameIndex) / float64(sampleRate) * ticksPerSecond)
}

// ParseWAV decodes a PCM RIFF/WAVE payload
func ParseWAV(data []byte) (*PCM, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE payload")
	}

	var pcm *PCM
	var frames []byte
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("fmt chunk too short")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, fmt.Errorf("unsupported wav encoding %d, want PCM", format)
			}
			channels := int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate := int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample := int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			pcm = &PCM{
				SampleRate:  sampleRate,
				SampleWidth: bitsPerSample / 8,
				Channels:    channels,
			}
		case "data":
			frames = data[body : body+chunkSize]
		}

		// Chunks are word-aligned
		if chunkSize%2 == 1 {
			chunkSize++
		}
		offset = body + chunkSize
	}

	if pcm == nil {
		return nil, fmt.Errorf("wav payload has no fmt chunk")
	}
	if frames == nil {
		return nil, fmt.Errorf("wav payload has no data chunk")
	}
	pcm.Frames = frames
	return pcm, nil
}

// BuildWAV encodes sample frames into a PCM RIFF/WAVE payload
func BuildWAV(frameChunks [][]byte, sampleRate, sampleWidth, channels int) []byte {
	var data bytes.Buffer
	for _, chunk := range frameChunks {
		data.Write(chunk)
	}
	dataLen := data.Len()

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(36+dataLen))
	out.WriteString("WAVE")

	out.WriteString("fmt ")
	binary.Write(&out, binary.LittleEndian, uint32(16))
	binary.Write(&out, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&out, binary.LittleEndian, uint16(channels))
	binary.Write(&out, binary.LittleEndian, uint32(sampleRate))
	byteRate := sampleRate * sampleWidth * channels
	binary.Write(&out, binary.LittleEndian, uint32(byteRate))
	binary.Write(&out, binary.LittleEndian, uint16(sampleWidth*channels)) // block align
	binary.Write(&out, binary.LittleEndian, uint16(sampleWidth*8))

	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(dataLen))
	out.Write(data.Bytes())

	return out.Bytes()
}

// PrependIntros concatenates the intro clips ahead of the meeting audio,
// separated by silence gaps, and returns the combined WAV together with the
// tick span each intro occupies and the tick the meeting itself starts at.
// Every clip must share the meeting's format.
func PrependIntros(meeting *PCM, intros []IntroClip, silenceMs int) ([]byte, []IntroSpan, int64, error) {
	if len(intros) == 0 {
		wav := BuildWAV([][]byte{meeting.Frames}, meeting.SampleRate, meeting.SampleWidth, meeting.Channels)
		return wav, nil, 0, nil
	}

	silenceFrames := meeting.SampleRate * silenceMs / 1000
	var silenceChunk []byte
	if silenceFrames > 0 {
		silenceChunk = make([]byte, silenceFrames*meeting.SampleWidth*meeting.Channels)
	}

	var frameChunks [][]byte
	var spans []IntroSpan
	frameCursor := 0

	for _, intro := range intros {
		if !meeting.SameFormat(intro.PCM) {
			return nil, nil, 0, fmt.Errorf("intro sample for %s has incompatible audio format", intro.DisplayName)
		}
		frameChunks = append(frameChunks, intro.PCM.Frames)
		startTick := FramesToTicks(frameCursor, meeting.SampleRate)
		frameCursor += intro.PCM.NumFrames()
		endTick := FramesToTicks(frameCursor, meeting.SampleRate)
		spans = append(spans, IntroSpan{
			DisplayName: intro.DisplayName,
			StartTick:   startTick,
			EndTick:     endTick,
		})
		if silenceChunk != nil {
			frameChunks = append(frameChunks, silenceChunk)
			frameCursor += silenceFrames
		}
	}

	meetingStartTick := FramesToTicks(frameCursor, meeting.SampleRate)
	frameChunks = append(frameChunks, meeting.Frames)

	wav := BuildWAV(frameChunks, meeting.SampleRate, meeting.SampleWidth, meeting.Channels)
	return wav, spans, meetingStartTick, nil
}
