package envelope

import "fmt"

// Stage identifies where decryption of an envelope failed.
type Stage string

const (
	StageParse  Stage = "parse"
	StageDecode Stage = "decode"
	StageUnwrap Stage = "unwrap"
	StageOpen   Stage = "open"
)

// DecryptError is returned for every envelope that cannot be decrypted:
// malformed JSON, bad base64, a key that does not unwrap, or a ciphertext
// that fails authentication. No plaintext is ever returned with it.
type DecryptError struct {
	Stage Stage
	Err   error
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("decrypting envelope (%s): %v", e.Stage, e.Err)
}

func (e *DecryptError) Unwrap() error {
	return e.Err
}
