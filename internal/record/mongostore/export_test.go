package mongostore

var ToBSONForTest = toBSON
