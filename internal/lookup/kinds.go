package lookup

// Kind describes one lookup type the bot exposes: its command, provider
// endpoint key and diamond price (zero means free, covered by quota).
type Kind struct {
	Name        string
	Command     string
	Usage       string
	Description string
	DiamondCost int
}

var Kinds = []Kind{
	{Name: "number", Command: "num", Usage: "/num [number]", Description: "Number info"},
	{Name: "upi", Command: "upi", Usage: "/upi [upi_id]", Description: "UPI info"},
	{Name: "pan", Command: "pan", Usage: "/pan [pan]", Description: "PAN info"},
	{Name: "ip", Command: "ip", Usage: "/ip [ip]", Description: "IP info"},
	{Name: "aadhar", Command: "aadhar", Usage: "/aadhar [number]", Description: "Aadhar info"},
	{Name: "bank_ifsc", Command: "ifsc", Usage: "/ifsc [code]", Description: "Bank IFSC info"},
	{Name: "insta_profile", Command: "iginfo", Usage: "/iginfo [username]", Description: "Instagram profile"},
	{Name: "vehicle_rc", Command: "rcpdf", Usage: "/rcpdf [plate]", Description: "Vehicle RC report", DiamondCost: 5},
}

// Prices maps kind name to diamond cost, for the access pipeline.
func Prices() map[string]int {
	prices := make(map[string]int, len(Kinds))
	for _, k := range Kinds {
		if k.DiamondCost > 0 {
			prices[k.Name] = k.DiamondCost
		}
	}
	return prices
}
