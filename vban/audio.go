package vban

import "fmt"

// AudioFormat is the typed view over header bytes 4-7 for the Audio sub-protocol.
type AudioFormat struct {
	SampleRateIndex SRIndex
	SamplesPerFrame int // 1..256
	Channels        int // 1..256
	BitResolution   BitResolution
	Codec           Codec
}

// AudioFormat decodes the audio-specific fields out of a header. The caller
// is responsible for having checked h.SubProtocol() == ProtocolAudio first.
func (h *Header) AudioFormat() AudioFormat {
	return AudioFormat{
		SampleRateIndex: h.SRIndex(),
		SamplesPerFrame: int(h.FormatNbs) + 1,
		Channels:        int(h.FormatNbc) + 1,
		BitResolution:   BitResolution(h.FormatBit & bitResolutionMask),
		Codec:           Codec(h.FormatBit & codecMask),
	}
}

// SetAudioFormat packs an AudioFormat into the header's format bytes and sets
// the sub-protocol to Audio. SamplesPerFrame and Channels are encoded as
// value-1 on the wire (spec.md §9 resolves the samples_per_frame ambiguity
// in favor of -1, matching the reference VBAN specification).
func (h *Header) SetAudioFormat(f AudioFormat) error {
	if f.SamplesPerFrame < 1 || f.SamplesPerFrame > 256 {
		return fmt.Errorf("%w: samples per frame %d out of range [1,256]", ErrInvalidPacket, f.SamplesPerFrame)
	}
	if f.Channels < 1 || f.Channels > 256 {
		return fmt.Errorf("%w: channels %d out of range [1,256]", ErrInvalidPacket, f.Channels)
	}
	h.SetSubProtocol(ProtocolAudio)
	h.SetSRIndex(f.SampleRateIndex)
	h.FormatNbs = uint8(f.SamplesPerFrame - 1)
	h.FormatNbc = uint8(f.Channels - 1)
	h.FormatBit = uint8(f.BitResolution&BitResolution(bitResolutionMask)) | uint8(f.Codec&Codec(codecMask))
	return nil
}

// BodySize returns the expected PCM body size in bytes for this audio format:
// samples_per_frame * channels * byte_width(bit_resolution).
func (f AudioFormat) BodySize() int {
	return f.SamplesPerFrame * f.Channels * f.BitResolution.ByteWidth()
}
