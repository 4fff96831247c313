// Package toolkit provides the built-in coaching tools, grouped by
// namespace:
//
//	utility.*    stateless helpers available to every caller
//	client.*     data scoped to the conversation's selected client
//	allClients.* cross-client views (admin only by default policy)
//	db.*         read-only ad-hoc SQL access (admin only by default policy)
//
// All returns STRUCTURED data; rendering is the model's job.
package toolkit
