package catalog

const wiki = "https://upload.wikimedia.org/wikipedia/commons/"

// DefaultSun is sized so that it renders three display units wide at the
// default radius scale of 0.2.
var DefaultSun = SunDescriptor{
	Name:           "Sun",
	RelativeRadius: 15,
	DisplayColor:   "#fdb813",
}

// DefaultBodies are the eight planets, radii and distances relative to Earth.
var DefaultBodies = []BodyDescriptor{
	{Name: "Mercury", RelativeRadius: 0.38, RelativeDistance: 0.39, DisplayColor: "#b5b5b5",
		TextureRef: wiki + "4/4a/Mercury_in_true_color.jpg"},
	{Name: "Venus", RelativeRadius: 0.95, RelativeDistance: 0.72, DisplayColor: "#e8cda2",
		TextureRef: wiki + "e/e5/Venus-real_color.jpg"},
	{Name: "Earth", RelativeRadius: 1.0, RelativeDistance: 1.0, DisplayColor: "#2e86ab",
		TextureRef:  wiki + "9/97/The_Earth_seen_from_Apollo_17.jpg",
		Decorations: Decorations{HasClouds: true}},
	{Name: "Mars", RelativeRadius: 0.53, RelativeDistance: 1.52, DisplayColor: "#c1440e",
		TextureRef: wiki + "0/02/OSIRIS_Mars_true_color.jpg"},
	{Name: "Jupiter", RelativeRadius: 11.2, RelativeDistance: 5.20, DisplayColor: "#d8ca9d",
		TextureRef: wiki + "e/e2/Jupiter.jpg"},
	{Name: "Saturn", RelativeRadius: 9.45, RelativeDistance: 9.58, DisplayColor: "#ead6b8",
		TextureRef:  wiki + "2/29/Saturn_true_color.jpg",
		Decorations: Decorations{HasRings: true}},
	{Name: "Uranus", RelativeRadius: 4.0, RelativeDistance: 19.18, DisplayColor: "#d1e7e7",
		TextureRef: wiki + "3/3d/Uranus2.jpg"},
	{Name: "Neptune", RelativeRadius: 3.88, RelativeDistance: 30.07, DisplayColor: "#5b5ddf",
		TextureRef: wiki + "5/56/Neptune_Full.jpg"},
}

// Default returns the eight-planet solar system.
func Default() *Catalog {
	c, err := New(DefaultSun, DefaultBodies...)
	if err != nil {
		panic(err)
	}
	return c
}
