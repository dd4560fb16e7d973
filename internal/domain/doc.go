// Package domain contains the core business entities of the annotation
// service: annotated texts, the label catalogue and aggregate statistics,
// together with the label-string rules shared by every layer.
package domain
