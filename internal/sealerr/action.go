package sealerr

type Action int8

const (
	Unknown Action = iota
	Load
	Canonicalize
	Fingerprint
	Encrypt
	Decrypt
	Append
	Process
	Validate
)

func (a Action) String() string {
	actions := map[Action]string{
		Unknown:      "unknown",
		Load:         "load",
		Canonicalize: "canonicalize",
		Fingerprint:  "fingerprint",
		Encrypt:      "encrypt",
		Decrypt:      "decrypt",
		Append:       "append",
		Process:      "process",
		Validate:     "validate",
	}

	if str, ok := actions[a]; ok {
		return str
	}
	return "unknown"
}
