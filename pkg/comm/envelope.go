package comm

import "encoding/json"

// Request is one raw command envelope sent to the device side.
type Request struct {
	Seq  uint32 `json:"seq"`
	Text string `json:"text"`
}

// Response carries the rendered dump, or a failure, back.
type Response struct {
	Seq  uint32 `json:"seq"`
	Err  string `json:"err,omitempty"`
	Dump string `json:"dump,omitempty"`
}

// Encode returns the wire form of the request.
func (r *Request) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRequest parses a request packet.
func DecodeRequest(pkt []byte) (*Request, error) {
	req := &Request{}
	if err := json.Unmarshal(pkt, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Encode returns the wire form of the response.
func (r *Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeResponse parses a response packet.
func DecodeResponse(pkt []byte) (*Response, error) {
	res := &Response{}
	if err := json.Unmarshal(pkt, res); err != nil {
		return nil, err
	}
	return res, nil
}
