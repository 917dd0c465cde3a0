// Package hcl_adapter reads scheduler configuration written in HCL and
// translates it into the format-agnostic config.Model.
//
// A configuration may be split over any number of `.hcl` files. Each file can
// carry any of the top-level blocks:
//
//	hardware { max_notifies = 1024  stream_class "normal" { ... } }
//	engine "AIcoreEngine" { scheduler = "default"  class = "vector" }
//	graph "resnet" { options { ... }  subgraph "sg0" { ... }  node "conv" { ... } }
//
// Node attributes are kept as cty values so that typed metadata such as
// attached-resource declarations survives translation unchanged.
package hcl_adapter
