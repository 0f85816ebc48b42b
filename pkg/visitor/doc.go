// Package visitor declares the callback protocol schema expansion drives
// during both archiving and retrieval. A Visitor is offered each level of
// the database/index/datum tree in turn and decides, by its return value,
// whether expansion should descend into that node's children.
//
//	schema expansion                 visitor
//	RuleDatabase match  ───────▶  SelectDatabase(dbKey, fullKey)
//	        │  (continue? )
//	        ▼
//	RuleIndex match     ───────▶  SelectIndex(indexKey, fullKey)
//	        │  (continue? )
//	        ▼
//	RuleDatum match     ───────▶  SelectDatum(datumKey, fullKey)
//
// Archiver and Retriever each implement this protocol with opposite
// intents: the former creates database/index/datum state as it descends,
// the latter gathers read handles.
package visitor
