package pkg

import "dbchat"

func AssertNoError(err error) {
	if err != nil {
		dbchat.Logger.Error().Err(err).Msg("Error occurred that should not have occurred.")
		panic(err)
	}
}
