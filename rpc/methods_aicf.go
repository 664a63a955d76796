package rpc

import "encoding/json"

// RegisterAICFMethods wires aicf.listProviders/getProvider/listJobs/
// getJob/claimPayout/getBalance (CANONICAL §6 "Wire: AICF").
func RegisterAICFMethods(reg *Registry, backend Backend) {
	reg.Register("aicf.listProviders", func(raw json.RawMessage) (any, error) {
		var p struct {
			Status     string `json:"status"`
			Capability string `json:"capability"`
		}
		_ = decodeParams(raw, &p)
		return backend.ListProviders(ProviderFilter{Status: p.Status, Capability: p.Capability}), nil
	})

	reg.Register("aicf.getProvider", func(raw json.RawMessage) (any, error) {
		var p struct {
			ID string `json:"id"`
		}
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		view, ok := backend.GetProvider(p.ID)
		if !ok {
			return nil, newError(CodeUnknownProvider, "unknown provider")
		}
		return view, nil
	})

	reg.Register("aicf.listJobs", func(raw json.RawMessage) (any, error) {
		var p struct {
			Status string `json:"status"`
			Kind   string `json:"kind"`
		}
		_ = decodeParams(raw, &p)
		return backend.ListJobs(JobFilter{Status: p.Status, Kind: p.Kind}), nil
	})

	reg.Register("aicf.getJob", func(raw json.RawMessage) (any, error) {
		taskID, err := decodeHash32(raw)
		if err != nil {
			return nil, err
		}
		view, ok := backend.GetJob(taskID)
		if !ok {
			return nil, newError(CodeUnknownJob, "unknown job")
		}
		return view, nil
	})

	reg.Register("aicf.claimPayout", func(raw json.RawMessage) (any, error) {
		var p struct {
			ProviderID string `json:"providerId"`
			Epoch      uint64 `json:"epoch"`
		}
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		payout, err := backend.ClaimPayout(p.ProviderID, p.Epoch)
		if err != nil {
			return nil, mapAICFError(err)
		}
		return payout, nil
	})

	reg.Register("aicf.getBalance", func(raw json.RawMessage) (any, error) {
		var p struct {
			ProviderID string `json:"providerId"`
		}
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		return map[string]string{"balance": backend.ProviderBalance(p.ProviderID).String()}, nil
	})
}
