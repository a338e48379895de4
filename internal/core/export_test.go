package core

var ParseSevenZipListing = parseSevenZipListing
