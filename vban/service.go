package vban

// ServiceFormat is the typed view over header bytes 4-7 for the Service sub-protocol.
type ServiceFormat struct {
	Function       ServiceFunction
	Service        ServiceType
	AdditionalInfo uint8
}

// ServiceFormat decodes the service-specific fields out of a header.
func (h *Header) ServiceFormat() ServiceFormat {
	return ServiceFormat{
		Function:       ServiceFunction(h.FormatNbs),
		Service:        ServiceType(h.FormatNbc),
		AdditionalInfo: h.FormatBit,
	}
}

// SetServiceFormat packs a ServiceFormat into the header's format bytes and
// sets the sub-protocol to Service.
func (h *Header) SetServiceFormat(f ServiceFormat) {
	h.SetSubProtocol(ProtocolService)
	h.SetSRIndex(0)
	h.FormatNbs = uint8(f.Function)
	h.FormatNbc = uint8(f.Service)
	h.FormatBit = f.AdditionalInfo
}
