package audio

import (
	"bytes"
	"testing"
)

func pcmWithFrames(nFrames int, fill byte) *PCM {
	frames := bytes.Repeat([]byte{fill, fill}, nFrames) // 16-bit mono
	return &PCM{SampleRate: 16000, SampleWidth: 2, Channels: 1, Frames: frames}
}

func TestBuildAndParseWAVRoundTrip(t *testing.T) {
	original := pcmWithFrames(1600, 0x7f)
	wav := BuildWAV([][]byte{original.Frames}, original.SampleRate, original.SampleWidth, original.Channels)

	parsed, err := ParseWAV(wav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.SampleRate != 16000 || parsed.SampleWidth != 2 || parsed.Channels != 1 {
		t.Errorf("unexpected format: %+v", parsed)
	}
	if parsed.NumFrames() != 1600 {
		t.Errorf("expected 1600 frames, got %d", parsed.NumFrames())
	}
	if !bytes.Equal(parsed.Frames, original.Frames) {
		t.Error("frames do not survive a round trip")
	}
}

func TestParseWAVRejectsGarbage(t *testing.T) {
	if _, err := ParseWAV([]byte("definitely not audio")); err == nil {
		t.Fatal("expected error for non-WAV payload")
	}
}

func TestPrependIntrosNoIntros(t *testing.T) {
	meeting := pcmWithFrames(800, 0x01)

	wav, spans, meetingStart, err := PrependIntros(meeting, nil, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spans) != 0 {
		t.Errorf("expected no spans, got %d", len(spans))
	}
	if meetingStart != 0 {
		t.Errorf("expected meeting to start at tick 0, got %d", meetingStart)
	}

	parsed, err := ParseWAV(wav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.NumFrames() != 800 {
		t.Errorf("expected 800 frames, got %d", parsed.NumFrames())
	}
}

func TestPrependIntrosLayout(t *testing.T) {
	meeting := pcmWithFrames(16000, 0x01) // 1s
	intros := []IntroClip{
		{DisplayName: "Anna Kowalska", PCM: pcmWithFrames(8000, 0x02)}, // 0.5s
		{DisplayName: "Jan Nowak", PCM: pcmWithFrames(4000, 0x03)},     // 0.25s
	}

	wav, spans, meetingStart, err := PrependIntros(meeting, intros, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	// 300ms silence at 16kHz is 4800 frames.
	if spans[0].StartTick != 0 {
		t.Errorf("first span must start at 0, got %d", spans[0].StartTick)
	}
	if spans[0].EndTick != FramesToTicks(8000, 16000) {
		t.Errorf("unexpected first span end %d", spans[0].EndTick)
	}
	if spans[1].StartTick != FramesToTicks(8000+4800, 16000) {
		t.Errorf("unexpected second span start %d", spans[1].StartTick)
	}
	if spans[1].EndTick != FramesToTicks(8000+4800+4000, 16000) {
		t.Errorf("unexpected second span end %d", spans[1].EndTick)
	}
	wantMeetingStart := FramesToTicks(8000+4800+4000+4800, 16000)
	if meetingStart != wantMeetingStart {
		t.Errorf("expected meeting start %d, got %d", wantMeetingStart, meetingStart)
	}

	parsed, err := ParseWAV(wav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantFrames := 8000 + 4800 + 4000 + 4800 + 16000
	if parsed.NumFrames() != wantFrames {
		t.Errorf("expected %d combined frames, got %d", wantFrames, parsed.NumFrames())
	}
}

func TestPrependIntrosFormatMismatch(t *testing.T) {
	meeting := pcmWithFrames(1600, 0x01)
	badIntro := &PCM{SampleRate: 44100, SampleWidth: 2, Channels: 1, Frames: make([]byte, 200)}

	_, _, _, err := PrependIntros(meeting, []IntroClip{{DisplayName: "Anna", PCM: badIntro}}, 300)
	if err == nil {
		t.Fatal("expected error for incompatible intro format")
	}
}

func TestIntroSpanContains(t *testing.T) {
	span := IntroSpan{DisplayName: "Anna", StartTick: 100, EndTick: 200}
	if !span.Contains(100) || !span.Contains(199) {
		t.Error("span must include its start and interior")
	}
	if span.Contains(200) || span.Contains(99) {
		t.Error("span must exclude its end and anything before its start")
	}
}
