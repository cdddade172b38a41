package h2

import (
	"encoding/binary"
	"fmt"
)

// SettingID is a 16-bit SETTINGS parameter identifier. The constants
// below are the RFC 7540 section 6.5.2 wire values; unknown identifiers
// are preserved on decode and passed through to the caller.
type SettingID uint16

const (
	SettingHeaderTableSize      SettingID = 0x1
	SettingEnablePush           SettingID = 0x2
	SettingMaxConcurrentStreams SettingID = 0x3
	SettingInitialWindowSize    SettingID = 0x4
	SettingMaxFrameSize         SettingID = 0x5
	SettingMaxHeaderListSize    SettingID = 0x6
)

var settingNames = map[SettingID]string{
	SettingHeaderTableSize:      "SETTINGS_HEADER_TABLE_SIZE",
	SettingEnablePush:           "SETTINGS_ENABLE_PUSH",
	SettingMaxConcurrentStreams: "SETTINGS_MAX_CONCURRENT_STREAMS",
	SettingInitialWindowSize:    "SETTINGS_INITIAL_WINDOW_SIZE",
	SettingMaxFrameSize:         "SETTINGS_MAX_FRAME_SIZE",
	SettingMaxHeaderListSize:    "SETTINGS_MAX_HEADER_LIST_SIZE",
}

func (s SettingID) String() string {
	if name, ok := settingNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_SETTING_%d", uint16(s))
}

// Setting is one (identifier, value) pair of a SETTINGS frame.
type Setting struct {
	ID  SettingID
	Val uint32
}

func (s Setting) String() string {
	return fmt.Sprintf("[%v = %d]", s.ID, s.Val)
}

// Settings is the ordered parameter list of a SETTINGS frame. Duplicates
// are kept in wire order; on application the later entry wins.
type Settings []Setting

// Value returns the last entry for id, if any.
func (s Settings) Value(id SettingID) (uint32, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].ID == id {
			return s[i].Val, true
		}
	}
	return 0, false
}

const settingLen = 6

// SettingsFrame (type=0x4) carries configuration parameters, or
// acknowledges the peer's parameters when the ACK flag is set.
type SettingsFrame struct {
	FrameHeader
	Settings Settings
}

func NewSettingsFrame(settings Settings) *SettingsFrame {
	f := &SettingsFrame{
		FrameHeader: FrameHeader{Type: FrameSettings},
		Settings:    settings,
	}
	f.updateLength()
	return f
}

// NewSettingsAck builds the empty SETTINGS frame with the ACK flag that
// acknowledges the peer's settings.
func NewSettingsAck() *SettingsFrame {
	f := &SettingsFrame{FrameHeader: FrameHeader{Type: FrameSettings, Flags: FlagAck}}
	f.updateLength()
	return f
}

func (f *SettingsFrame) Header() *FrameHeader { return &f.FrameHeader }

func (f *SettingsFrame) HasAck() bool { return f.HasFlags(FlagAck) }
func (f *SettingsFrame) SetAck()      { f.SetFlags(FlagAck) }
func (f *SettingsFrame) ClearAck()    { f.ClearFlags(FlagAck) }

func (f *SettingsFrame) decodePayload(payload []byte, tbl *HeaderTable) error {
	if err := f.checkStreamZero(); err != nil {
		return err
	}
	if f.HasAck() && len(payload) != 0 {
		return fmt.Errorf("%w: SETTINGS ACK with %d octets of payload", ErrProtocol, len(payload))
	}
	if len(payload)%settingLen != 0 {
		return fmt.Errorf("%w: SETTINGS payload of %d octets is not a multiple of %d", ErrFrameSize, len(payload), settingLen)
	}
	for i := 0; i < len(payload); i += settingLen {
		f.Settings = append(f.Settings, Setting{
			ID:  SettingID(binary.BigEndian.Uint16(payload[i : i+2])),
			Val: binary.BigEndian.Uint32(payload[i+2 : i+6]),
		})
	}
	return nil
}

func (f *SettingsFrame) encodePayload(tbl *HeaderTable) ([]byte, error) {
	if f.HasAck() && len(f.Settings) != 0 {
		return nil, fmt.Errorf("%w: SETTINGS ACK must carry no parameters", ErrProtocol)
	}
	buf := make([]byte, 0, len(f.Settings)*settingLen)
	for _, s := range f.Settings {
		buf = binary.BigEndian.AppendUint16(buf, uint16(s.ID))
		buf = binary.BigEndian.AppendUint32(buf, s.Val)
	}
	return buf, nil
}

func (f *SettingsFrame) updateLength() { f.Length = uint32(len(f.Settings) * settingLen) }
