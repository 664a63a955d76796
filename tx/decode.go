package tx

import (
	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/pqsig"
)

func mapUint64(m map[string]any, key string) (uint64, error) {
	v, ok := m[key]
	if !ok {
		return 0, txerr(ErrInvalidCBOR, "missing field "+key)
	}
	u, ok := v.(uint64)
	if !ok {
		return 0, txerr(ErrInvalidCBOR, "field "+key+" is not an unsigned integer")
	}
	return u, nil
}

func mapString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", txerr(ErrInvalidCBOR, "field "+key+" is not a string")
	}
	return s, nil
}

func mapBytes(m map[string]any, key string) ([]byte, error) {
	v, ok := m[key]
	if !ok {
		return nil, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, txerr(ErrInvalidCBOR, "field "+key+" is not a byte string")
	}
	return b, nil
}

func mapAddress(m map[string]any, key string) (address.Address, error) {
	b, err := mapBytes(m, key)
	if err != nil {
		return address.Address{}, err
	}
	if b == nil {
		return address.Address{}, nil
	}
	return address.FromBytes(b)
}

func bodyFromSignable(m map[string]any) (TxBody, error) {
	chainID, err := mapUint64(m, "chain_id")
	if err != nil {
		return TxBody{}, err
	}
	from, err := mapAddress(m, "from")
	if err != nil {
		return TxBody{}, err
	}
	nonce, err := mapUint64(m, "nonce")
	if err != nil {
		return TxBody{}, err
	}
	gasLimit, err := mapUint64(m, "gas_limit")
	if err != nil {
		return TxBody{}, err
	}
	kindStr, err := mapString(m, "kind")
	if err != nil {
		return TxBody{}, err
	}
	maxFee, err := mapString(m, "max_fee")
	if err != nil {
		return TxBody{}, err
	}
	memo, err := mapString(m, "memo")
	if err != nil {
		return TxBody{}, err
	}

	body := TxBody{
		ChainID:  chainID,
		From:     from,
		Nonce:    nonce,
		GasLimit: gasLimit,
		MaxFee:   maxFee,
		Memo:     memo,
		Kind:     Kind(kindStr),
	}

	switch body.Kind {
	case KindTransfer:
		to, err := mapAddress(m, "to")
		if err != nil {
			return TxBody{}, err
		}
		value, err := mapString(m, "value")
		if err != nil {
			return TxBody{}, err
		}
		body.To = to
		body.Value = value
	case KindCall:
		to, err := mapAddress(m, "to")
		if err != nil {
			return TxBody{}, err
		}
		data, err := mapBytes(m, "data")
		if err != nil {
			return TxBody{}, err
		}
		body.CallTo = to
		body.Data = data
		if _, has := m["value"]; has {
			value, err := mapString(m, "value")
			if err != nil {
				return TxBody{}, err
			}
			body.Value = value
			body.HasValue = true
		}
	case KindDeploy:
		code, err := mapBytes(m, "code")
		if err != nil {
			return TxBody{}, err
		}
		init, err := mapBytes(m, "init")
		if err != nil {
			return TxBody{}, err
		}
		body.Code = code
		body.Init = init
	default:
		return TxBody{}, txerr(ErrInvalidTx, "unknown tx kind "+kindStr)
	}

	if err := body.Validate(); err != nil {
		return TxBody{}, err
	}
	return body, nil
}

func signatureFromMap(m map[string]any) (Signature, error) {
	scheme, err := mapString(m, "scheme")
	if err != nil {
		return Signature{}, err
	}
	pubkey, err := mapBytes(m, "pubkey")
	if err != nil {
		return Signature{}, err
	}
	sig, err := mapBytes(m, "sig")
	if err != nil {
		return Signature{}, err
	}
	if _, ok := pqsig.ParamsFor(pqsig.Scheme(scheme)); !ok {
		return Signature{}, txerr(ErrUnknownScheme, scheme)
	}
	return Signature{Scheme: pqsig.Scheme(scheme), Pubkey: pubkey, Sig: sig}, nil
}
