// Package document is the page-level document collaborator used by the editor.
//
// A Document is an ordered list of pages addressed by 0-based position. The
// PDF implementation keeps the whole file in memory: structural edits
// (insert, delete, rotate, extract) are applied with pdfcpu and replace the
// byte image, while page rasterisation is delegated to MuPDF through go-fitz.
//
// Errors are classified with Kind (range, capacity, io, render) so callers can
// present them uniformly; see IsKind.
//
// Image helpers decode png, jpeg, gif, bmp, tiff and webp inputs and flatten
// transparency onto white before a page is built from them.
package document
