// Package lifecycle decides which sections keep their photo data in memory.
//
// After every layout pass the Manager receives the vertical extent of each
// section and produces a Plan: a batch of loaded sections to forget and at
// most one unloaded section to fetch next. Planning is pure; Apply performs
// the store dispatches and starts the fetch.
//
// Two windows are involved, both measured in viewport heights ("pages"):
//
//   - keep window: [top - keep*h, top + (keep+1)*h]. Loaded sections outside
//     it are forgotten unless protected (selection, info panel, detail view,
//     export dialog).
//   - preload window: ahead of the scroll direction by preload pages and
//     not behind the viewport. The unloaded section closest to the viewport
//     inside it is fetched.
//
// Only one fetch runs at a time.
package lifecycle
