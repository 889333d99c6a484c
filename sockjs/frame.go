package sockjs

// Frame tags, bit-exact on the wire.
const (
	frameOpenByte      byte = 'o'
	frameHeartbeatByte byte = 'h'
	frameDataByte      byte = 'a'
	frameCloseByte     byte = 'c'
)

// writeOpen renders the open frame: a literal 'o'.
func writeOpen() []byte { return []byte{frameOpenByte} }

// writeHeartbeat renders the heartbeat frame: a literal 'h'.
func writeHeartbeat() []byte { return []byte{frameHeartbeatByte} }

// writeClose renders a close frame: 'c' followed by JSON([code,reason]).
func writeClose(codec *Codec, reason CloseReason) ([]byte, error) {
	body, err := codec.Marshal(reason.asSlice())
	if err != nil {
		return nil, err
	}
	return append([]byte{frameCloseByte}, body...), nil
}

// writeData renders a data frame: 'a' followed by JSON(messages).
// messages is never nil; an empty slice would produce "a[]", which
// callers must avoid sending (the protocol suppresses empty writes).
func writeData(codec *Codec, messages []interface{}) ([]byte, error) {
	body, err := codec.Marshal(messages)
	if err != nil {
		return nil, err
	}
	return append([]byte{frameDataByte}, body...), nil
}

// dataReceived decodes an inbound frame body: empty input is
// NoPayload, non-JSON input is BadJSON.
func dataReceived(codec *Codec, body []byte) (interface{}, error) {
	if len(body) == 0 {
		return nil, &InvalidData{Kind: NoPayload}
	}
	v, err := codec.Unmarshal(body)
	if err != nil {
		return nil, &InvalidData{Kind: BadJSON, Err: err}
	}
	return v, nil
}
