package rpc

import "encoding/json"

// Request is one JSON-RPC 2.0 call.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is one JSON-RPC 2.0 reply. Exactly one of Result/Error is set,
// per spec; Result defaults to the JSON null literal when omitted so
// marshaling never produces a bare absent field for a successful call with
// no payload.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// HandlerFunc implements one JSON-RPC method.
type HandlerFunc func(params json.RawMessage) (any, error)

// Registry maps method names to handlers. Method families (tx, chain,
// state, da, rand, aicf) each register their own handlers into a shared
// Registry via RegisterXxx functions, one file per concern.
type Registry struct {
	handlers map[string]HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

func (r *Registry) Register(method string, h HandlerFunc) {
	r.handlers[method] = h
}

// Dispatch executes a single decoded Request and always returns a
// Response, never an error — JSON-RPC failures are carried in
// Response.Error.
func (r *Registry) Dispatch(req Request) Response {
	resp := Response{JSONRPC: "2.0", ID: req.ID}
	if req.JSONRPC != "2.0" || req.Method == "" {
		resp.Error = newError(CodeInvalidRequest, "malformed request")
		return resp
	}
	h, ok := r.handlers[req.Method]
	if !ok {
		resp.Error = newError(CodeMethodNotFound, "unknown method: "+req.Method)
		return resp
	}
	result, err := h(req.Params)
	if err != nil {
		if rpcErr, ok := err.(*Error); ok {
			resp.Error = rpcErr
		} else {
			resp.Error = newError(CodeInternal, err.Error())
		}
		return resp
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		resp.Error = newError(CodeInternal, "failed to encode result")
		return resp
	}
	resp.Result = encoded
	return resp
}

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return newError(CodeInvalidParams, err.Error())
	}
	return nil
}
