// Package yymh implements a providers.Scraper for www.yymanhua.com.
//
// Listing, detail and chapter pages are plain server-rendered HTML. Chapter
// pages either embed their images directly or, for signed chapters, expose
// the signing parameters in an inline script; each page then has to be
// fetched from chapterimage.ashx, whose packed response carries the image URL.
package yymh
