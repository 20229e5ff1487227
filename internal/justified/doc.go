// Package justified packs photos into justified rows: every complete row is
// stretched to exactly fill the container width while each photo keeps its
// aspect ratio.
//
// When real aspect ratios are not known yet, EstimateContainerHeight and
// DummyBoxes produce placeholder geometry close to the final result so that
// the grid does not jump once photo data arrives. The two are exact inverses
// with respect to the row count.
package justified
