// Package main provides gridsim, a command-line tool for building photo
// libraries and exercising the grid engine against them without a browser.
//
// # Usage
//
//	gridsim <command> [args]
//
// # Commands
//
//   - import <dir>: Adds every decodable image under dir to the library,
//     reading master dimensions from the image header
//   - watch <dir>: Imports dir, then re-imports it whenever images below it
//     change, until interrupted
//   - seed <count> [days] [until]: Adds synthetic photos spread over a number
//     of days ending at until (default: now)
//   - sections: Lists the library's sections with their photo counts
//   - simulate [steps]: Scrolls a virtual viewport from top to bottom and
//     reports which sections are loaded and evicted at every step
//   - minimap: Draws the section heights as a bar chart sized to the terminal
//
// # Environment
//
//   - DATABASE_DIR: Directory holding photos.db (default: /database)
//   - INDEX_WORKERS: Header-reading workers for import (default: 3)
//   - VIEWPORT_WIDTH, VIEWPORT_HEIGHT: Virtual viewport for simulate
//     (default: 1280x800)
package main
