// Package parser turns the raw pci.ids text into the entity trees of the
// model package.
//
// Parsing happens in two layers. The line classifier assigns each raw line
// one of seven types based on its prefix and the type of the previous
// structural line (comments do not advance that context). The strict line
// parsers then validate the line against a precompiled grammar and construct
// the corresponding entity.
//
// The Parser folds the classified line stream into two maps, vendors by id
// and device classes by id, keeping one "open" cursor per tree level. A
// parent entry stays open while its child lines are read and is committed
// when its next sibling or the end of input is reached. The first error of
// any kind aborts the parse.
package parser
