package entity

// Entity is anything persistable to Elasticsearch. Slug doubles as the
// document id, so it must be stable for a given entity.
type Entity interface {
	Slug() string
}
