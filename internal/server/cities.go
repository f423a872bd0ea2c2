package server

// germanCities backs the autocompletion endpoint. Events carry no city
// column, so suggestions come from a fixed list of larger German
// cities rather than from stored data.
var germanCities = []string{
	"Aachen",
	"Augsburg",
	"Berlin",
	"Bielefeld",
	"Bochum",
	"Bonn",
	"Braunschweig",
	"Bremen",
	"Chemnitz",
	"Darmstadt",
	"Dortmund",
	"Dresden",
	"Duisburg",
	"Düsseldorf",
	"Erfurt",
	"Essen",
	"Frankfurt am Main",
	"Freiburg",
	"Gelsenkirchen",
	"Hagen",
	"Halle",
	"Hamburg",
	"Hannover",
	"Heidelberg",
	"Karlsruhe",
	"Kassel",
	"Kiel",
	"Köln",
	"Krefeld",
	"Leipzig",
	"Lübeck",
	"Magdeburg",
	"Mainz",
	"Mannheim",
	"Mönchengladbach",
	"München",
	"Münster",
	"Nürnberg",
	"Oberhausen",
	"Oldenburg",
	"Osnabrück",
	"Potsdam",
	"Regensburg",
	"Rostock",
	"Saarbrücken",
	"Stuttgart",
	"Ulm",
	"Wiesbaden",
	"Wuppertal",
	"Würzburg",
}
