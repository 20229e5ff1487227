package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"text/tabwriter"
	"time"

	"photo-grid/internal/database"
	"photo-grid/internal/photo"
)

// Common camera and phone aspect ratios as width, height pairs.
var seedShapes = [][2]int{
	{6000, 4000}, {4000, 6000}, {4032, 3024}, {3024, 4032},
	{3840, 2160}, {2160, 3840}, {3000, 3000},
}

// seedPhotos adds count synthetic photos taken within days days before now.
// Roughly one photo in twenty has no known master size.
func seedPhotos(ctx context.Context, db *database.Database, count, days int, now time.Time) (err error) {
	rng := rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(count)))
	run := now.Format("20060102T150405")

	tx, err := db.BeginBatch()
	if err != nil {
		return err
	}
	defer func() { err = db.EndBatch(tx, err) }()

	for i := range count {
		if err := ctx.Err(); err != nil {
			return err
		}
		created := now.Add(-time.Duration(rng.IntN(days*24*60)) * time.Minute)
		p := &photo.Photo{
			Title:       fmt.Sprintf("IMG_%05d", i),
			Master:      fmt.Sprintf("/synthetic/%s/IMG_%05d.jpg", run, i),
			Extension:   "jpg",
			Orientation: 1,
			Flag:        rng.IntN(10) == 0,
			Date:        created.Format("2006-01-02"),
			CreatedAt:   created,
		}
		if rng.IntN(20) != 0 {
			shape := seedShapes[rng.IntN(len(seedShapes))]
			p.MasterWidth, p.MasterHeight = shape[0], shape[1]
		}
		if _, err := db.UpsertPhoto(tx, p); err != nil {
			return err
		}
	}
	return nil
}

// listSections prints the sections of the unfiltered library.
func listSections(ctx context.Context, db *database.Database, w io.Writer) error {
	sections, err := db.ListSections(ctx, photo.DefaultFilter())
	if err != nil {
		return err
	}
	if len(sections) == 0 {
		_, err := fmt.Fprintln(w, "No sections")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tTITLE\tPHOTOS")
	total := 0
	for _, sec := range sections {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", sec.ID, sec.Title, sec.Count)
		total += sec.Count
	}
	fmt.Fprintf(tw, "\t%d sections\t%d\n", len(sections), total)
	if err := tw.Flush(); err != nil {
		return err
	}

	lastImport, err := db.LastImport(ctx)
	if err != nil || lastImport.IsZero() {
		return err
	}
	_, err = fmt.Fprintf(w, "Last import: %s\n", lastImport.Local().Format(time.DateTime))
	return err
}
