// Package simplecms is a content-store access layer for hierarchical,
// versioned-translation CMS entities.
//
// Entities (contents and blocks) form trees encoded as materialized paths,
// so ancestor, descendant, children, sibling and root queries run without
// recursive traversal. Each entity carries translations with at most one
// active row per language, maintained transactionally. Writes run through
// a pipeline that sequences validation, polymorphic sub-resource
// construction, persistence, lifecycle event dispatch and coarse cache
// invalidation inside one atomic unit of work.
//
// Storage engines, event consumers, caches, type factories and language
// lookup are collaborators behind small interfaces; see repo/memory and
// repo/postgres for the bundled Repository implementations.
package simplecms
