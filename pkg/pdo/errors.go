package pdo

import "errors"

// ErrBufferLength is returned when Encode/Decode is given a buffer whose
// length does not match the frame's declared wire size.
var ErrBufferLength = errors.New("pdo: buffer length does not match frame size")
