// Command wsexport fetches pages from Wikisource and converts them to e-book
// formats with Calibre's ebook-convert.
//
// Typical use:
//
//	wsexport export "Le Horla" --lang fr --format pdf-a5
//	wsexport formats
//	wsexport history
//
// Configuration is read from ~/.config/wsexport/config.toml unless --config
// names another file; `wsexport config init` writes a commented sample.
package main
