// Package model defines stable boundary types for the governance API.
//
// Engine identity (canonical action bytes and CIDs) is unaffected by any
// projection. These structs are the only types intended for direct JSON
// serialization by remote consumers.
package model
