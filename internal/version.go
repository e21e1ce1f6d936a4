package internal

// Version is the cardcreator release
const Version = "0.1.0"
