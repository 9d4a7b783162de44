package models

// Job is a work archetype with an integer payout range
type Job struct {
	Name string
	Min  int64
	Max  int64
}

// Jobs is the fixed table of work archetypes
var Jobs = []Job{
	{Name: "Pizza Delivery", Min: 50, Max: 150},
	{Name: "Dog Walker", Min: 30, Max: 100},
	{Name: "Programmer", Min: 100, Max: 300},
	{Name: "Rideshare Driver", Min: 75, Max: 200},
	{Name: "Freelancer", Min: 80, Max: 250},
	{Name: "Streamer", Min: 20, Max: 500},
	{Name: "Chef", Min: 90, Max: 220},
	{Name: "Artist", Min: 60, Max: 300},
}
