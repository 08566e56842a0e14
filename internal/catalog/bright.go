package catalog

// BrightStars returns a starter list of bright stars (J2000, mag < 4).
// Proper motion is left at zero.
func BrightStars() []Star {
	out := make([]Star, len(brightStars))
	copy(out, brightStars)
	return out
}

// Yale Bright Star Catalog positions, IAU names. Ordered by magnitude.
var brightStars = []Star{
	{Label: "Sirius", RA: 101.287, Dec: -16.716, Mag: -1.46, Class: "A1"},
	{Label: "Canopus", RA: 95.988, Dec: -52.696, Mag: -0.74, Class: "F0"},
	{Label: "Arcturus", RA: 213.915, Dec: 19.182, Mag: -0.05, Class: "K1"},
	{Label: "Vega", RA: 279.235, Dec: 38.784, Mag: 0.03, Class: "A0"},
	{Label: "Capella", RA: 79.172, Dec: 45.998, Mag: 0.08, Class: "G8"},
	{Label: "Rigel", RA: 78.634, Dec: -8.202, Mag: 0.13, Class: "B8"},
	{Label: "Procyon", RA: 114.826, Dec: 5.225, Mag: 0.34, Class: "F5"},
	{Label: "Achernar", RA: 24.429, Dec: -57.237, Mag: 0.46, Class: "B6"},
	{Label: "Betelgeuse", RA: 88.793, Dec: 7.407, Mag: 0.50, Class: "M1"},
	{Label: "Hadar", RA: 210.956, Dec: -60.373, Mag: 0.61, Class: "B1"},
	{Label: "Altair", RA: 297.696, Dec: 8.868, Mag: 0.76, Class: "A7"},
	{Label: "Acrux", RA: 186.650, Dec: -63.099, Mag: 0.76, Class: "B0"},
	{Label: "Aldebaran", RA: 68.980, Dec: 16.509, Mag: 0.85, Class: "K5"},
	{Label: "Antares", RA: 247.352, Dec: -26.432, Mag: 0.96, Class: "M1"},
	{Label: "Spica", RA: 201.298, Dec: -11.161, Mag: 0.97, Class: "B1"},
	{Label: "Pollux", RA: 116.329, Dec: 28.026, Mag: 1.14, Class: "K0"},
	{Label: "Fomalhaut", RA: 344.413, Dec: -29.622, Mag: 1.16, Class: "A3"},
	{Label: "Deneb", RA: 310.358, Dec: 45.280, Mag: 1.25, Class: "A2"},
	{Label: "Mimosa", RA: 191.930, Dec: -59.689, Mag: 1.25, Class: "B0"},
	{Label: "Regulus", RA: 152.093, Dec: 11.967, Mag: 1.35, Class: "B8"},
	{Label: "Adhara", RA: 104.656, Dec: -28.972, Mag: 1.50, Class: "B2"},
	{Label: "Castor", RA: 113.650, Dec: 31.889, Mag: 1.58, Class: "A1"},
	{Label: "Gacrux", RA: 187.791, Dec: -57.113, Mag: 1.63, Class: "M3"},
	{Label: "Shaula", RA: 263.402, Dec: -37.104, Mag: 1.63, Class: "B2"},
	{Label: "Bellatrix", RA: 81.283, Dec: 6.350, Mag: 1.64, Class: "B2"},
	{Label: "Elnath", RA: 81.573, Dec: 28.608, Mag: 1.65, Class: "B7"},
	{Label: "Alnilam", RA: 84.053, Dec: -1.202, Mag: 1.69, Class: "B0"},
	{Label: "Alnitak", RA: 85.190, Dec: -1.943, Mag: 1.77, Class: "O9"},
	{Label: "Alioth", RA: 193.507, Dec: 55.960, Mag: 1.77, Class: "A1"},
	{Label: "Dubhe", RA: 165.932, Dec: 61.751, Mag: 1.79, Class: "K0"},
	{Label: "Mirfak", RA: 51.081, Dec: 49.861, Mag: 1.79, Class: "F5"},
	{Label: "Alkaid", RA: 206.885, Dec: 49.313, Mag: 1.86, Class: "B3"},
	{Label: "Polaris", RA: 37.954, Dec: 89.264, Mag: 2.02, Class: "F7"},
	{Label: "Hamal", RA: 31.793, Dec: 23.463, Mag: 2.00, Class: "K2"},
	{Label: "Mizar", RA: 200.981, Dec: 54.925, Mag: 2.04, Class: "A2"},
	{Label: "Alpheratz", RA: 2.097, Dec: 29.091, Mag: 2.06, Class: "B8"},
	{Label: "Mirach", RA: 17.433, Dec: 35.621, Mag: 2.05, Class: "M0"},
	{Label: "Kochab", RA: 222.676, Dec: 74.156, Mag: 2.08, Class: "K4"},
	{Label: "Rasalhague", RA: 263.734, Dec: 12.560, Mag: 2.08, Class: "A5"},
	{Label: "Algol", RA: 47.042, Dec: 40.957, Mag: 2.12, Class: "B8"},
	{Label: "Denebola", RA: 177.265, Dec: 14.572, Mag: 2.13, Class: "A3"},
	{Label: "Alphecca", RA: 233.672, Dec: 26.715, Mag: 2.23, Class: "A0"},
	{Label: "Mintaka", RA: 83.002, Dec: -0.299, Mag: 2.23, Class: "O9"},
	{Label: "Sadr", RA: 305.557, Dec: 40.257, Mag: 2.23, Class: "F8"},
	{Label: "Eltanin", RA: 269.152, Dec: 51.489, Mag: 2.23, Class: "K5"},
	{Label: "Schedar", RA: 10.127, Dec: 56.537, Mag: 2.23, Class: "K0"},
	{Label: "Caph", RA: 2.295, Dec: 59.150, Mag: 2.27, Class: "F2"},
	{Label: "Merak", RA: 165.460, Dec: 56.382, Mag: 2.37, Class: "A1"},
	{Label: "Izar", RA: 221.247, Dec: 27.074, Mag: 2.37, Class: "K0"},
	{Label: "Enif", RA: 326.046, Dec: 9.875, Mag: 2.39, Class: "K2"},
	{Label: "Scheat", RA: 345.944, Dec: 28.083, Mag: 2.42, Class: "M2"},
	{Label: "Phecda", RA: 178.458, Dec: 53.695, Mag: 2.44, Class: "A0"},
	{Label: "Aljanah", RA: 311.553, Dec: 33.970, Mag: 2.48, Class: "K0"},
	{Label: "Markab", RA: 346.190, Dec: 15.205, Mag: 2.49, Class: "B9"},
	{Label: "Alderamin", RA: 319.645, Dec: 62.586, Mag: 2.51, Class: "A7"},
	{Label: "Tarazed", RA: 296.565, Dec: 10.613, Mag: 2.72, Class: "K3"},
	{Label: "Rastaban", RA: 262.608, Dec: 52.301, Mag: 2.79, Class: "G2"},
	{Label: "Cor Caroli", RA: 194.007, Dec: 38.318, Mag: 2.81, Class: "A0"},
	{Label: "Albireo", RA: 292.680, Dec: 27.960, Mag: 3.18, Class: "K3"},
	{Label: "Megrez", RA: 183.857, Dec: 57.033, Mag: 3.31, Class: "A3"},
	{Label: "Thuban", RA: 211.097, Dec: 64.376, Mag: 3.65, Class: "A0"},
	{Label: "Alshain", RA: 298.828, Dec: 6.407, Mag: 3.71, Class: "G8"},
}
