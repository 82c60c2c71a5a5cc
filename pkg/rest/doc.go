// Package rest implements the dispatch core of the Vanguard front door: an
// ordered composition of route filters, a typed rejection taxonomy, and the
// classifier that turns rejections into the stable wire-level error contract.
//
// A route filter either produces a reply or a rejection. Structural
// mismatches (wrong path, wrong method) fall through to the next filter;
// validation failures inside a matched filter are terminal for the request.
// Whatever happens, exactly one reply or one error is written per request.
package rest
