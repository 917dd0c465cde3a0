// Package reuse hands out attached (secondary) resources: extra streams,
// events and notifies that a node asks for on top of its primary stream.
//
// A node declares what it needs through node attributes. Two layouts are
// accepted and may coexist on one node:
//
//   - the legacy single object `_attached_<kind>_info`
//     `{ group_name, reuse_key, required }`
//   - the current list `_attached_<kind>_info_list` of objects that may also
//     carry `count` and `notify_type`.
//
// Both are decoded once into a Request. Requests that share a Scope (group
// name plus reuse key) for the same Kind collapse onto one id range; distinct
// scopes never collide.
package reuse
