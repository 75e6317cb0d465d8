// Package models holds the records exchanged with the todo backend. Only the
// fields the client reads or writes are typed; everything else the backend
// sends survives a decode/encode round trip in Extra.
package models
